package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coma-workspace/coma-workspace/internal/shared"
	_ "github.com/coma-workspace/coma-workspace/testing"
)

// memoryIdemStore keeps claimed keys in a map.
type memoryIdemStore struct {
	keys map[string]struct{}
}

func newMemoryIdemStore() *memoryIdemStore {
	return &memoryIdemStore{keys: map[string]struct{}{}}
}

func (s *memoryIdemStore) CheckAndInsert(_ context.Context, key, _ string) error {
	if _, dup := s.keys[key]; dup {
		return shared.ErrIdempotencyConflict
	}
	s.keys[key] = struct{}{}
	return nil
}

func (s *memoryIdemStore) Delete(_ context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

func newTestHandler(t *testing.T, repo *stubRepo) http.Handler {
	t.Helper()
	svc, _ := newTestService(t, repo)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	h := NewHandler(logger, svc, nil, nil, nil, []BankAccount{{ID: "bca", Name: "BCA"}})
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateIncome(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})

	rec := doJSON(t, h, http.MethodPost, "/ledger/income", map[string]any{
		"type": "INCOME_SESSION", "amount": 150.0, "channel": "cash",
		"description": "Session: Walk-in",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, TypeIncomeSession, entry.Type)
	assert.Equal(t, "2024-05-10", entry.DateKey)

	rec = doJSON(t, h, http.MethodGet, "/ledger/balance?channel=cash", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bal balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bal))
	assert.Equal(t, 150.0, bal.Balance)
}

func TestHandlerRejectsInvalidBody(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})

	rec := doJSON(t, h, http.MethodPost, "/ledger/income", map[string]any{
		"type": "INCOME_SESSION", "amount": -5.0, "channel": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	// A bank income without an account id fails struct validation.
	rec = doJSON(t, h, http.MethodPost, "/ledger/income", map[string]any{
		"type": "INCOME_SESSION", "amount": 5.0, "channel": "bank",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerExpenseWithoutFunds(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})

	rec := doJSON(t, h, http.MethodPost, "/ledger/expenses", map[string]any{
		"type": "EXPENSE_OPERATIONAL", "amount": 50.0, "channel": "cash",
		"description": "supplies",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerReleasesIdempotencyKeyOnFailure(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{})
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	idem := newMemoryIdemStore()
	h := NewHandler(logger, svc, idem, nil, nil, nil)
	r := chi.NewRouter()
	h.MountRoutes(r)

	post := func() *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
			"type": "EXPENSE_OPERATIONAL", "amount": 50.0, "channel": "cash",
			"description": "supplies",
		}))
		req := httptest.NewRequest(http.MethodPost, "/ledger/expenses", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "exp-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	// No cash on hand yet, so the expense fails and the key is released.
	rec := post()
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	_, err := svc.RecordIncome(context.Background(), IncomeInput{
		Type: TypeIncomeSession, Amount: 100, Channel: ChannelCash,
		Description: "Session: Walk-in",
	})
	require.NoError(t, err)

	// The retry with the same key now goes through.
	rec = post()
	require.Equal(t, http.StatusCreated, rec.Code)

	// Replaying the processed key is a duplicate.
	rec = post()
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerLockedPeriodConflict(t *testing.T) {
	repo := &stubRepo{lock: &PeriodLock{LockID: "l1", LockedUntil: "2024-05-31"}}
	h := newTestHandler(t, repo)

	rec := doJSON(t, h, http.MethodPost, "/ledger/income", map[string]any{
		"type": "INCOME_SESSION", "amount": 10.0, "channel": "cash",
		"dateKey": "2024-05-15",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerLockLifecycle(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})

	rec := doJSON(t, h, http.MethodGet, "/lock/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/lock/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	locked := newTestHandler(t, &stubRepo{lock: &PeriodLock{LockID: "l1", LockedUntil: "2024-04-30"}})
	rec = doJSON(t, locked, http.MethodGet, "/lock/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lock PeriodLock
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lock))
	assert.Equal(t, "2024-04-30", lock.LockedUntil)

	rec = doJSON(t, locked, http.MethodDelete, "/lock/?actor=p1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandlerMigrationConflictOnNonEmptyLedger(t *testing.T) {
	repo := &stubRepo{entries: []Entry{mkEntry(TypeIncomeSession, 10, DirectionIn, ChannelCash)}}
	h := newTestHandler(t, repo)

	rec := doJSON(t, h, http.MethodPost, "/migration", map[string]any{
		"records": []any{}, "actor": "p1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerSnapshotNotFound(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})
	rec := doJSON(t, h, http.MethodGet, "/inventory/snapshots/INV-2024-9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerBalanceRejectsUnknownChannel(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})
	rec := doJSON(t, h, http.MethodGet, "/ledger/balance?channel=crypto", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerIntegrityReport(t *testing.T) {
	overdraft := mkEntry(TypeExpenseOperational, 40, DirectionOut, ChannelCash)
	h := newTestHandler(t, &stubRepo{entries: []Entry{overdraft}})

	rec := doJSON(t, h, http.MethodGet, "/ledger/integrity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report integrityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.False(t, report.Healthy)
	assert.NotEmpty(t, report.Problems)
}

func TestHandlerInventoryPreview(t *testing.T) {
	h := newTestHandler(t, &stubRepo{entries: monthEntries()})

	rec := doJSON(t, h, http.MethodGet, "/inventory/preview?start=2024-05-01&end=2024-05-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 800.0, snap.GrossProfit)

	rec = doJSON(t, h, http.MethodGet, "/inventory/preview?start=2024-06-01&end=2024-05-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
