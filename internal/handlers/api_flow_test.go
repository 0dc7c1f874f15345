package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/general_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/handlers"
	"github.com/SscSPs/general_ledger/internal/platform/config"
)

func TestAPI_PostReverseReport(t *testing.T) {
	repos, _ := memory.NewRepositoryProvider()
	cfg := &config.Config{RateLimit: "1000-M"}
	router, err := handlers.NewRouter(cfg, services.NewServiceContainer(cfg, repos), slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := call(http.MethodPost, "/api/v1/voucher-types", `{"slug":"JV","name":"Journal","prefix":"JV-","enabledFrom":"2020-01-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(http.MethodPost, "/api/v1/voucher-types", `{"slug":"JV","name":"Journal","enabledFrom":"2020-06-01"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(http.MethodPost, "/api/v1/transactions",
		`{"slug":"JV","asOf":"2020-02-01","userID":3,"entries":[{"accountID":100,"amount":"40.10"},{"accountID":200,"amount":"-40.10"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"reference":"JV-1"}`, w.Body.String())

	w = call(http.MethodPost, "/api/v1/transactions",
		`{"slug":"JV","asOf":"2020-02-01","userID":3,"entries":[{"accountID":100,"amount":"40.10"},{"accountID":200,"amount":"-40.00"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = call(http.MethodPost, "/api/v1/transactions/JV-1/reverse", `{"asOf":"2020-02-03","userID":3}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"reference":"JV-2","reversalOf":"JV-1"}`, w.Body.String())

	w = call(http.MethodPost, "/api/v1/transactions/JV-1/reverse", `{"asOf":"2020-02-04","userID":3}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(http.MethodGet, "/api/v1/reports/trial-balance?asOf=2020-02-03", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report dto.TrialBalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.Balanced)
	for _, row := range report.Rows {
		assert.True(t, row.Balance.IsZero(), "account %d", row.AccountID)
	}

	w = call(http.MethodGet, "/api/v1/balances?asOf=2020-02-02", "")
	assert.JSONEq(t, `[{"accountID":100,"balance":"40.1"},{"accountID":200,"balance":"-40.1"}]`, w.Body.String())
}

func TestAPI_EveryReferenceIsFetchable(t *testing.T) {
	repos, _ := memory.NewRepositoryProvider()
	cfg := &config.Config{}
	router, err := handlers.NewRouter(cfg, services.NewServiceContainer(cfg, repos), slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := call(http.MethodPost, "/api/v1/voucher-types", `{"slug":"SV","name":"Sales","prefix":"SV/","enabledFrom":"2020-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a separator in the prefix would yield unroutable references")

	w = call(http.MethodPost, "/api/v1/voucher-types", `{"slug":"SV","name":"Sales","prefix":"SV-","suffix":".HQ","sequenceKind":"DATE_RESET","enabledFrom":"2020-01-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(http.MethodPost, "/api/v1/transactions",
		`{"slug":" SV ","asOf":"2020-02-01","userID":3,"entries":[{"accountID":100,"amount":"5"},{"accountID":200,"amount":"-5"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"reference":"SV-202002-1.HQ"}`, w.Body.String())

	w = call(http.MethodGet, "/api/v1/transactions/SV-202002-1.HQ", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var txn dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txn))
	assert.Equal(t, "SV", txn.Slug)
}
