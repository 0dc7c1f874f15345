// Package rules holds the ordered predicates a generated reference must satisfy.
package rules

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/general_ledger/internal/apperrors"
)

// Context is what a predicate may know about the reference being checked.
type Context struct {
	Slug   string
	Prefix string
	Suffix string
	AsOf   time.Time
}

// Predicate reports whether reference is acceptable. A non-nil error means the
// predicate could not be evaluated, not that the reference is bad.
type Predicate func(ctx context.Context, reference string, rc Context) (bool, error)

type rule struct {
	name      string
	predicate Predicate
}

// ViolationError names the first rule a reference failed.
type ViolationError struct {
	Rule      string
	Reference string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("reference %q rejected by rule %q", e.Reference, e.Rule)
}

// Bag is an ordered set of named rules. A Bag is not safe for concurrent
// mutation; build it once and share it read-only.
type Bag struct {
	rules []rule
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends a rule. Names must be non-empty and unique within the bag.
func (b *Bag) Add(name string, predicate Predicate) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("rule name is required")
	}
	if predicate == nil {
		return apperrors.NewValidationError("rule %q has no predicate", name)
	}
	for _, r := range b.rules {
		if r.name == name {
			return apperrors.NewValidationError("rule %q already registered", name)
		}
	}
	b.rules = append(b.rules, rule{name: name, predicate: predicate})
	return nil
}

// AddRule is Add for static setup code; it panics on a bad name.
func (b *Bag) AddRule(name string, predicate Predicate) *Bag {
	if err := b.Add(name, predicate); err != nil {
		panic(err)
	}
	return b
}

// Names lists the rules in evaluation order.
func (b *Bag) Names() []string {
	names := make([]string, len(b.rules))
	for i, r := range b.rules {
		names[i] = r.name
	}
	return names
}

// Validate runs the rules in order and stops at the first failure, returning a
// *ViolationError for it. Predicate errors are returned wrapped.
func (b *Bag) Validate(ctx context.Context, reference string, rc Context) error {
	for _, r := range b.rules {
		ok, err := r.predicate(ctx, reference, rc)
		if err != nil {
			return fmt.Errorf("rule %q: %w", r.name, err)
		}
		if !ok {
			return &ViolationError{Rule: r.name, Reference: reference}
		}
	}
	return nil
}

// Check is Validate reduced to a boolean plus the failing rule name.
func (b *Bag) Check(ctx context.Context, reference string, rc Context) (bool, string, error) {
	err := b.Validate(ctx, reference, rc)
	if err == nil {
		return true, "", nil
	}
	var violation *ViolationError
	if errors.As(err, &violation) {
		return false, violation.Rule, nil
	}
	return false, "", err
}

// ReferenceChecker looks a reference up in the journal.
type ReferenceChecker interface {
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

// NotEmpty rejects the empty string.
func NotEmpty() Predicate {
	return func(_ context.Context, reference string, _ Context) (bool, error) {
		return reference != "", nil
	}
}

// MaxLength rejects references longer than n characters.
func MaxLength(n int) Predicate {
	return func(_ context.Context, reference string, _ Context) (bool, error) {
		return utf8.RuneCountInString(reference) <= n, nil
	}
}

// Pattern requires the whole reference to match re.
func Pattern(re *regexp.Regexp) Predicate {
	return func(_ context.Context, reference string, _ Context) (bool, error) {
		return re.MatchString(reference), nil
	}
}

// Affixes requires the configured prefix and suffix to enclose a non-empty
// sequence segment.
func Affixes() Predicate {
	return func(_ context.Context, reference string, rc Context) (bool, error) {
		if !strings.HasPrefix(reference, rc.Prefix) || !strings.HasSuffix(reference, rc.Suffix) {
			return false, nil
		}
		return len(reference) > len(rc.Prefix)+len(rc.Suffix), nil
	}
}

// Unique rejects references already present in the journal. It is the only
// built-in rule that consults storage.
func Unique(checker ReferenceChecker) Predicate {
	return func(ctx context.Context, reference string, _ Context) (bool, error) {
		exists, err := checker.ReferenceExists(ctx, reference)
		if err != nil {
			return false, err
		}
		return !exists, nil
	}
}

const (
	RuleNotEmpty  = "not_empty"
	RuleMaxLength = "max_length"
	RuleCharset   = "charset"
	RuleAffixes   = "affixes"
	RuleUnique    = "unique"

	DefaultMaxLength = 64
)

// DefaultCharset is the character set accepted by Default. References are
// used as URL path segments, so it excludes '/' and '#'.
var DefaultCharset = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)

// Default returns the standard bag. checker may be nil to skip the uniqueness rule.
func Default(checker ReferenceChecker) *Bag {
	b := NewBag().
		AddRule(RuleNotEmpty, NotEmpty()).
		AddRule(RuleMaxLength, MaxLength(DefaultMaxLength)).
		AddRule(RuleCharset, Pattern(DefaultCharset)).
		AddRule(RuleAffixes, Affixes())
	if checker != nil {
		b.AddRule(RuleUnique, Unique(checker))
	}
	return b
}
