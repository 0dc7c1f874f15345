// Command glctl registers voucher types, posts transactions and reads balances
// against the configured ledger store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/platform/config"
	"github.com/SscSPs/general_ledger/internal/platform/logging"
	"github.com/SscSPs/general_ledger/pkg/ledger"
)

const usage = `usage: glctl <command> [flags]

commands:
  register       register a voucher type version
  retire         move the end of a voucher type window
  post           post a balanced transaction
  reverse        reverse a posted transaction
  show           print a posted transaction
  balances       print account balances as of a date
  trial-balance  print the trial balance as of a date
`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Logs go to stderr; stdout carries command output.
	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	ctx := logging.WithLogger(context.Background(), logger)

	l, err := ledger.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open ledger store", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = run(ctx, l, os.Args[1:], os.Stdout)
	if cerr := l.Close(); cerr != nil {
		logger.Error("Error closing ledger store", slog.String("error", cerr.Error()))
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "glctl:", err)
		os.Exit(1)
	}
}

// run executes one command and writes its JSON result to out.
func run(ctx context.Context, l *ledger.Ledger, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return flag.ErrHelp
	}

	var (
		result any
		err    error
	)
	switch cmd, rest := args[0], args[1:]; cmd {
	case "register":
		result, err = register(ctx, l, rest)
	case "retire":
		result, err = retire(ctx, l, rest)
	case "post":
		result, err = post(ctx, l, rest)
	case "reverse":
		result, err = reverse(ctx, l, rest)
	case "show":
		result, err = show(ctx, l, rest)
	case "balances":
		result, err = balances(ctx, l, rest)
	case "trial-balance":
		result, err = trialBalance(ctx, l, rest)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func register(ctx context.Context, l *ledger.Ledger, args []string) (any, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	req := dto.RegisterVoucherTypeRequest{}
	fs.StringVar(&req.Slug, "slug", "", "voucher type slug")
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Description, "description", "", "description")
	fs.StringVar(&req.Prefix, "prefix", "", "reference prefix")
	fs.StringVar(&req.Suffix, "suffix", "", "reference suffix")
	fs.StringVar(&req.SequenceKind, "sequence", "", "MONOTONIC or DATE_RESET")
	fs.StringVar(&req.PeriodLayout, "period-layout", "", "Go time layout of a DATE_RESET period")
	from := dateFlag{}
	to := dateFlag{}
	fs.Var(&from, "from", "first valid date (YYYY-MM-DD)")
	fs.Var(&to, "to", "exclusive end date (YYYY-MM-DD), empty for open-ended")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	req.EnabledFrom = from.t
	req.EnabledTo = to.ptr()

	vt, err := l.RegisterVoucherType(ctx, req)
	if err != nil {
		return nil, err
	}
	return dto.ToVoucherTypeResponse(vt), nil
}

func retire(ctx context.Context, l *ledger.Ledger, args []string) (any, error) {
	fs := flag.NewFlagSet("retire", flag.ContinueOnError)
	slug := fs.String("slug", "", "voucher type slug")
	from := dateFlag{}
	to := dateFlag{}
	fs.Var(&from, "from", "start date identifying the version (YYYY-MM-DD)")
	fs.Var(&to, "to", "new exclusive end date (YYYY-MM-DD), empty to reopen")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	vt, err := l.RetireVoucherType(ctx, *slug, from.t, to.ptr())
	if err != nil {
		return nil, err
	}
	return dto.ToVoucherTypeResponse(vt), nil
}

func post(ctx context.Context, l *ledger.Ledger, args []string) (any, error) {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	req := dto.PostRequest{}
	fs.StringVar(&req.Slug, "slug", "", "voucher type slug")
	fs.Int64Var(&req.UserID, "user", 0, "posting user ID")
	fs.StringVar(&req.Memo, "memo", "", "memo")
	asOf := dateFlag{}
	fs.Var(&asOf, "date", "posting date (YYYY-MM-DD)")
	entries := entryFlag{}
	fs.Var(&entries, "entry", "account:amount, repeatable; positive debits, negative credits")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	req.AsOf = asOf.t
	req.Entries = entries

	reference, err := l.Post(ctx, req)
	if err != nil {
		return nil, err
	}
	return map[string]string{"reference": reference}, nil
}

func reverse(ctx context.Context, l *ledger.Ledger, args []string) (any, error) {
	fs := flag.NewFlagSet("reverse", flag.ContinueOnError)
	req := dto.ReverseRequest{}
	fs.StringVar(&req.Reference, "ref", "", "reference to reverse")
	fs.Int64Var(&req.UserID, "user", 0, "posting user ID")
	fs.StringVar(&req.Memo, "memo", "", "memo")
	asOf := dateFlag{}
	fs.Var(&asOf, "date", "reversal date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	req.AsOf = asOf.t

	reference, err := l.Reverse(ctx, req)
	if err != nil {
		return nil, err
	}
	return map[string]string{"reference": reference, "reversalOf": req.Reference}, nil
}

func show(ctx context.Context, l *ledger.Ledger, args []string) (any, error) {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	reference := fs.String("ref", "", "reference")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	txn, err := l.GetTransaction(ctx, *reference)
	if err != nil {
		return nil, err
	}
	return dto.ToTransactionResponse(txn), nil
}

func balances(ctx context.Context, l *ledger.Ledger, args []string) (any, error) {
	asOf, userID, err := parseAsOf("balances", args)
	if err != nil {
		return nil, err
	}

	b, err := l.GetAccountBalances(ctx, asOf, userID)
	if err != nil {
		return nil, err
	}
	return dto.ToAccountBalancesResponse(b), nil
}

func trialBalance(ctx context.Context, l *ledger.Ledger, args []string) (any, error) {
	asOf, userID, err := parseAsOf("trial-balance", args)
	if err != nil {
		return nil, err
	}

	report, err := l.TrialBalance(ctx, asOf, userID)
	if err != nil {
		return nil, err
	}
	return dto.ToTrialBalanceResponse(report), nil
}

func parseAsOf(name string, args []string) (time.Time, *int64, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	asOf := dateFlag{}
	fs.Var(&asOf, "date", "as-of date (YYYY-MM-DD), today when empty")
	user := fs.Int64("user", 0, "restrict to one user ID")
	if err := fs.Parse(args); err != nil {
		return time.Time{}, nil, err
	}

	day := asOf.t
	if day.IsZero() {
		day = domain.DateOf(time.Now())
	}
	if *user == 0 {
		return day, nil, nil
	}
	return day, user, nil
}

// dateFlag parses YYYY-MM-DD.
type dateFlag struct {
	t time.Time
}

func (d *dateFlag) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(domain.DateLayout)
}

func (d *dateFlag) Set(s string) error {
	t, err := domain.ParseDate(s)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	d.t = t
	return nil
}

func (d *dateFlag) ptr() *time.Time {
	if d.t.IsZero() {
		return nil
	}
	t := d.t
	return &t
}

// entryFlag collects account:amount legs.
type entryFlag []domain.EntryLine

func (e *entryFlag) String() string {
	parts := make([]string, len(*e))
	for i, line := range *e {
		parts[i] = strconv.FormatInt(line.AccountID, 10) + ":" + line.Amount.String()
	}
	return strings.Join(parts, ",")
}

func (e *entryFlag) Set(s string) error {
	account, amount, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("expected account:amount, got %q", s)
	}
	accountID, err := strconv.ParseInt(strings.TrimSpace(account), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid account %q: %w", account, err)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	*e = append(*e, domain.EntryLine{AccountID: accountID, Amount: d})
	return nil
}
