package ledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/coma-workspace/coma-workspace/internal/platform/httpx"
	"github.com/coma-workspace/coma-workspace/internal/shared"
)

// MetricsRecorder receives domain counters from the handler. Implemented
// by observability.Metrics; nil disables recording.
type MetricsRecorder interface {
	ObserveEntries(types []string)
	ObserveArchive()
}

// IdempotencyClaims records consumed Idempotency-Key values so a
// double-submitted money movement is applied at most once. Implemented
// by shared.IdempotencyStore; nil disables the check.
type IdempotencyClaims interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Handler exposes the ledger over JSON.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	idem      IdempotencyClaims
	cache     *Cache
	metrics   MetricsRecorder
	accounts  []BankAccount
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, idem IdempotencyClaims, cache *Cache, metrics MetricsRecorder, accounts []BankAccount) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		idem:      idem,
		cache:     cache,
		metrics:   metrics,
		accounts:  accounts,
	}
}

// observe counts successfully appended entries by type.
func (h *Handler) observe(entries ...Entry) {
	if h.metrics == nil || len(entries) == 0 {
		return
	}
	types := make([]string, len(entries))
	for i, e := range entries {
		types[i] = string(e.Type)
	}
	h.metrics.ObserveEntries(types)
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Get("/entries", h.listEntries)
		r.Get("/balance", h.getBalance)
		r.Get("/stats", h.getStats)
		r.Get("/treasury", h.getTreasury)
		r.Get("/cost-analysis", h.getCostAnalysis)
		r.Get("/partners/{id}", h.getPartnerStats)
		r.Get("/integrity", h.getIntegrity)
		r.Post("/income", h.createIncome)
		r.Post("/expenses", h.createExpense)
		r.Post("/debts", h.createDebt)
		r.Post("/debt-payments", h.createDebtPayment)
		r.Post("/partner-draws", h.createPartnerDraw)
		r.Post("/liquidations", h.createLiquidation)
		r.Post("/opening-balances", h.createOpeningBalance)
		r.Post("/fix-negative-cash", h.fixNegativeCash)
	})
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/preview", h.getInventoryPreview)
		r.Get("/end-day", h.getEndDayPreview)
		r.Get("/snapshots", h.listSnapshots)
		r.Get("/snapshots/{archiveID}", h.getSnapshot)
		r.Post("/archive", h.archiveInventory)
	})
	r.Route("/lock", func(r chi.Router) {
		r.Get("/", h.getLock)
		r.Delete("/", h.deleteLock)
	})
	r.Post("/migration", h.runMigration)
}

// respondError maps ledger errors to RFC7807 responses.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPeriodLocked):
		httpx.Problem(w, http.StatusConflict, "Period Locked", err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Funds", err.Error())
	case errors.Is(err, ErrMalformedEntry),
		errors.Is(err, ErrMeterReadingRegressed),
		errors.Is(err, ErrKwhPriceUnset):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Entry", err.Error())
	case errors.Is(err, ErrLedgerNotEmpty):
		httpx.Problem(w, http.StatusConflict, "Ledger Not Empty", err.Error())
	case errors.Is(err, ErrNoActiveLock):
		httpx.Problem(w, http.StatusNotFound, "No Active Lock", err.Error())
	case errors.Is(err, ErrSnapshotNotFound):
		httpx.Problem(w, http.StatusNotFound, "Snapshot Not Found", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	default:
		h.logger.Error("ledger request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// decodeValid decodes the body and runs struct validation.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON payload")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

// claimIdempotency consumes the Idempotency-Key header when present. A
// repeated key rejects the request before any entry is written; callers
// release the key again when the operation fails.
func (h *Handler) claimIdempotency(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get("Idempotency-Key")
	if key == "" || h.idem == nil {
		return "", true
	}
	if err := h.idem.CheckAndInsert(r.Context(), key, "ledger"); err != nil {
		h.respondError(w, err)
		return "", false
	}
	return key, true
}

// releaseIdempotency rolls back a claimed key after a failed operation so
// the client can retry with the same key.
func (h *Handler) releaseIdempotency(ctx context.Context, key string) {
	if key == "" || h.idem == nil {
		return
	}
	if err := h.idem.Delete(ctx, key); err != nil {
		h.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", err))
	}
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	entries := h.service.Entries()
	httpx.JSON(w, http.StatusOK, entriesResponse{Entries: entries, Count: len(entries)})
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	channel := Channel(r.URL.Query().Get("channel"))
	if !channel.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Channel", "channel must be cash, bank or receivable")
		return
	}
	accountID := r.URL.Query().Get("account_id")
	httpx.JSON(w, http.StatusOK, balanceResponse{
		Channel:   string(channel),
		AccountID: accountID,
		Balance:   h.service.ChannelBalance(channel, accountID),
	})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if !ValidDateKey(start) || !ValidDateKey(end) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "start and end must be YYYY-MM-DD")
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.PeriodStats(start, end))
}

func (h *Handler) getTreasury(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.TreasuryStats(h.accounts))
}

func (h *Handler) getCostAnalysis(w http.ResponseWriter, r *http.Request) {
	costs, err := h.service.CostAnalysis(r.URL.Query().Get("month"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, costs)
}

func (h *Handler) getPartnerStats(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.PartnerStats(chi.URLParam(r, "id")))
}

func (h *Handler) getIntegrity(w http.ResponseWriter, r *http.Request) {
	problems := h.service.Integrity()
	httpx.JSON(w, http.StatusOK, integrityResponse{Problems: problems, Healthy: len(problems) == 0})
}

func (h *Handler) createIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entry, err := h.service.RecordIncome(r.Context(), IncomeInput{
		Type:        TransactionType(req.Type),
		Amount:      req.Amount,
		Channel:     Channel(req.Channel),
		AccountID:   req.AccountID,
		Description: req.Description,
		EntityID:    req.EntityID,
		DateKey:     req.DateKey,
		Actor:       req.Actor,
	})
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	h.observe(entry)
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entry, err := h.service.RecordExpense(r.Context(), ExpenseInput{
		Type:        TransactionType(req.Type),
		Amount:      req.Amount,
		Channel:     Channel(req.Channel),
		AccountID:   req.AccountID,
		Description: req.Description,
		EntityID:    req.EntityID,
		DateKey:     req.DateKey,
		Actor:       req.Actor,
	})
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	h.observe(entry)
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) createDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entry, err := h.service.RecordDebt(r.Context(), DebtInput{
		Amount:      req.Amount,
		Description: req.Description,
		EntityID:    req.EntityID,
		DateKey:     req.DateKey,
		Actor:       req.Actor,
	})
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	h.observe(entry)
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) createDebtPayment(w http.ResponseWriter, r *http.Request) {
	var req debtPaymentRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entries, err := h.service.RecordDebtPayment(r.Context(), DebtPaymentInput{
		Amount:      req.Amount,
		Outstanding: req.Outstanding,
		Channel:     Channel(req.Channel),
		AccountID:   req.AccountID,
		EntityID:    req.EntityID,
		DateKey:     req.DateKey,
		Actor:       req.Actor,
	})
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	h.observe(entries...)
	httpx.JSON(w, http.StatusCreated, entriesResponse{Entries: entries, Count: len(entries)})
}

func (h *Handler) createPartnerDraw(w http.ResponseWriter, r *http.Request) {
	var req partnerDrawRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entry, err := h.service.RecordPartnerDraw(r.Context(), PartnerDrawInput{
		PartnerID: req.PartnerID,
		Kind:      PartnerDrawKind(req.Kind),
		Amount:    req.Amount,
		Channel:   Channel(req.Channel),
		AccountID: req.AccountID,
		Note:      req.Note,
		DateKey:   req.DateKey,
	})
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	h.observe(entry)
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) createLiquidation(w http.ResponseWriter, r *http.Request) {
	var req liquidationRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entries, err := h.service.Liquidate(r.Context(), LiquidationInput{
		PartnerID:       req.PartnerID,
		Amount:          req.Amount,
		TargetAccountID: req.TargetAccountID,
		EntityID:        req.EntityID,
		DateKey:         req.DateKey,
	})
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	h.observe(entries...)
	httpx.JSON(w, http.StatusCreated, entriesResponse{Entries: entries, Count: len(entries)})
}

func (h *Handler) createOpeningBalance(w http.ResponseWriter, r *http.Request) {
	var req openingBalanceRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entry, err := h.service.RecordOpeningBalance(r.Context(), OpeningBalanceInput{
		Amount:      req.Amount,
		Channel:     Channel(req.Channel),
		AccountID:   req.AccountID,
		Description: req.Description,
		DateKey:     req.DateKey,
		Actor:       req.Actor,
	})
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	h.observe(entry)
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) fixNegativeCash(w http.ResponseWriter, r *http.Request) {
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entry, err := h.service.FixNegativeCash(r.Context(), r.URL.Query().Get("actor"))
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.observe(*entry)
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) getInventoryPreview(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if !ValidDateKey(start) || !ValidDateKey(end) || start > end {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "start and end must be YYYY-MM-DD with start <= end")
		return
	}

	key, err := h.cache.BuildKey(r.Context(), "inventory-preview", start, end)
	if err == nil {
		var cached Snapshot
		if ok, err := h.cache.GetJSON(r.Context(), key, &cached); err == nil && ok {
			httpx.JSON(w, http.StatusOK, cached)
			return
		}
	}

	snap := h.service.InventoryPreview(start, end)
	if key != "" {
		if err := h.cache.SetJSON(r.Context(), key, snap); err != nil {
			h.logger.Warn("cache inventory preview", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) getEndDayPreview(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("cycle_start")
	cycleStart, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Cycle Start", "cycle_start must be RFC3339")
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.EndDayPreview(cycleStart))
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.service.Snapshots(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snapshots)
}

func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "archiveID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) archiveInventory(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	snap, err := h.service.ArchiveInventory(r.Context(), ArchiveInput{
		Start:               req.Start,
		End:                 req.End,
		CurrentMeterReading: req.CurrentMeterReading,
		Notes:               req.Notes,
		Actor:               req.Actor,
	})
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveArchive()
	}
	httpx.JSON(w, http.StatusCreated, snap)
}

func (h *Handler) getLock(w http.ResponseWriter, r *http.Request) {
	lock := h.service.Lock()
	if lock == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.JSON(w, http.StatusOK, lock)
}

func (h *Handler) deleteLock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unlock(r.Context(), r.URL.Query().Get("actor")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) runMigration(w http.ResponseWriter, r *http.Request) {
	var req migrationRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	idemKey, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	entries, err := h.service.Migrate(r.Context(), LegacyData{
		Records:   req.Records,
		Expenses:  req.Expenses,
		Purchases: req.Purchases,
		Transfers: req.Transfers,
		Debts:     req.Debts,
		Loans:     req.Loans,
	}, req.Actor)
	if err != nil {
		h.releaseIdempotency(r.Context(), idemKey)
		h.respondError(w, err)
		return
	}
	h.observe(entries...)
	httpx.JSON(w, http.StatusCreated, migrationResponse{Imported: len(entries)})
}
