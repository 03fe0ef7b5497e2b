package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coma-workspace/coma-workspace/internal/shared"
)

// Repository persists the ledger. The storage medium must preserve entry
// immutability and full-history retrieval; the pure core never touches it
// directly.
type Repository interface {
	LoadEntries(ctx context.Context) ([]Entry, error)
	InsertEntries(ctx context.Context, entries []Entry) error
	LoadLock(ctx context.Context) (*PeriodLock, error)
	DeleteLock(ctx context.Context) error
	LoadPricing(ctx context.Context) (PricingConfig, bool, error)
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	CountSnapshots(ctx context.Context) (int, error)
	// Archive applies the whole end-of-period movement in one transaction:
	// the electricity entry, the frozen snapshot, the advanced meter
	// reading and the new period lock.
	Archive(ctx context.Context, entries []Entry, snap Snapshot, pricing PricingConfig, lock PeriodLock) error
}

// AuditPort records mutating operations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator bumps the derived-stats cache version after mutations.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service is the single logical writer over the ledger. Every mutating
// operation validates against the period lock and current balances before
// anything is appended; multi-entry movements are persisted together or
// not at all.
type Service struct {
	mu       sync.Mutex
	repo     Repository
	audit    AuditPort
	cache    CacheInvalidator
	factory  *Factory
	store    *Store
	partners []Partner
	pricing  PricingConfig
	lock     *PeriodLock
	now      func() time.Time
}

// ServiceConfig collects service dependencies. Audit and Cache are
// optional.
type ServiceConfig struct {
	Repository Repository
	Audit      AuditPort
	Cache      CacheInvalidator
	Partners   []Partner
	Pricing    PricingConfig
	Location   *time.Location
}

// NewService validates the partner configuration and wires the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("ledger: repository required")
	}
	if err := ValidatePartners(cfg.Partners); err != nil {
		return nil, err
	}
	return &Service{
		repo:     cfg.Repository,
		audit:    cfg.Audit,
		cache:    cfg.Cache,
		factory:  NewFactory(cfg.Location),
		store:    NewStore(nil),
		partners: append([]Partner(nil), cfg.Partners...),
		pricing:  cfg.Pricing,
		now:      time.Now,
	}, nil
}

// WithNow overrides the clock for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
		s.factory.WithNow(now)
	}
}

// Load hydrates the in-memory store, lock and pricing from the repository.
// Called once at startup before the service accepts operations.
func (s *Service) Load(ctx context.Context) error {
	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load entries: %w", err)
	}
	lock, err := s.repo.LoadLock(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load lock: %w", err)
	}
	pricing, found, err := s.repo.LoadPricing(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load pricing: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = NewStore(entries)
	s.lock = lock
	if found {
		s.pricing = pricing
	}
	return nil
}

// Entries returns the full ledger, newest first.
func (s *Service) Entries() []Entry {
	return s.store.All()
}

// Lock returns the active period lock, nil when unlocked.
func (s *Service) Lock() *PeriodLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lock == nil {
		return nil
	}
	cp := *s.lock
	return &cp
}

// Pricing returns the current pricing configuration.
func (s *Service) Pricing() PricingConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pricing
}

// Partners returns the injected shareholder configuration.
func (s *Service) Partners() []Partner {
	return append([]Partner(nil), s.partners...)
}

func (s *Service) partnerName(id string) string {
	for _, p := range s.partners {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// ChannelBalance resolves the balance query for a channel and optional
// bank account.
func (s *Service) ChannelBalance(channel Channel, accountID string) float64 {
	return channelBalance(s.store.All(), channel, accountID)
}

// PeriodStats aggregates the inclusive dateKey range.
func (s *Service) PeriodStats(start, end string) PeriodStats {
	return StatsForPeriod(s.store.All(), start, end)
}

// PartnerStats reports lifetime withdrawals against repayments.
func (s *Service) PartnerStats(partnerID string) PartnerStats {
	return StatsForPartner(s.store.All(), partnerID)
}

// TreasuryStats resolves the treasury dashboard view.
func (s *Service) TreasuryStats(accounts []BankAccount) TreasuryStats {
	return StatsForTreasury(s.store.All(), accounts)
}

// CostAnalysis resolves the per-day month view.
func (s *Service) CostAnalysis(monthKey string) ([]DailyCost, error) {
	return CostAnalysis(s.store.All(), monthKey)
}

// InventoryPreview computes the live profit-distribution view without
// freezing anything.
func (s *Service) InventoryPreview(start, end string) Snapshot {
	return CalcInventory(s.store.All(), start, end, s.partners, s.Pricing())
}

// EndDayPreview summarises the open cycle window for closing review.
func (s *Service) EndDayPreview(cycleStart time.Time) DayCyclePreview {
	return CalcEndDayPreview(s.store.All(), cycleStart, s.now(), s.factory.Location())
}

// Integrity scans the ledger for known-bad states.
func (s *Service) Integrity() []string {
	return CheckIntegrity(s.store.All())
}

// Snapshots lists the frozen archive records.
func (s *Service) Snapshots(ctx context.Context) ([]Snapshot, error) {
	return s.repo.ListSnapshots(ctx)
}

// Snapshot resolves one archive by its human-facing id.
func (s *Service) Snapshot(ctx context.Context, archiveID string) (Snapshot, error) {
	snaps, err := s.repo.ListSnapshots(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for _, snap := range snaps {
		if snap.ArchiveID == archiveID {
			return snap, nil
		}
	}
	return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, archiveID)
}

// append persists the batch then mirrors it into memory. Callers hold
// s.mu and have already validated the whole movement.
func (s *Service) append(ctx context.Context, entries []Entry) error {
	if err := s.repo.InsertEntries(ctx, entries); err != nil {
		return fmt.Errorf("ledger: persist entries: %w", err)
	}
	s.store.Append(entries...)
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if actor == "" {
		actor = "system"
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "ledger_entry",
		EntityID: entityID,
		Meta:     meta,
		At:       s.now(),
	})
}

// IncomeInput describes collected revenue (session, product or customer
// debt payment).
type IncomeInput struct {
	Type        TransactionType
	Amount      float64
	Channel     Channel
	AccountID   string
	Description string
	EntityID    string
	DateKey     string
	Actor       string
}

// RecordIncome appends one income entry.
func (s *Service) RecordIncome(ctx context.Context, in IncomeInput) (Entry, error) {
	if !in.Type.IsIncome() {
		return Entry{}, fmt.Errorf("%w: %q is not an income type", ErrMalformedEntry, in.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.factory.Create(EntryInput{
		Type: in.Type, Amount: in.Amount, Direction: DirectionIn,
		Channel: in.Channel, Description: in.Description,
		AccountID: in.AccountID, EntityID: in.EntityID, DateKey: in.DateKey,
	})
	if err != nil {
		return Entry{}, err
	}
	if err := ValidateOperation(entry.DateKey, s.lock); err != nil {
		return Entry{}, err
	}
	if err := s.append(ctx, []Entry{entry}); err != nil {
		return Entry{}, err
	}
	s.recordAudit(ctx, in.Actor, "ledger.income", entry.ID, map[string]any{"type": entry.Type, "amount": entry.Amount})
	return entry, nil
}

// ExpenseInput describes a money-out operating expense.
type ExpenseInput struct {
	Type        TransactionType
	Amount      float64
	Channel     Channel
	AccountID   string
	Description string
	EntityID    string
	DateKey     string
	Actor       string
}

// RecordExpense validates funds and the period lock, then appends one
// expense entry.
func (s *Service) RecordExpense(ctx context.Context, in ExpenseInput) (Entry, error) {
	if !in.Type.IsExpense() {
		return Entry{}, fmt.Errorf("%w: %q is not an expense type", ErrMalformedEntry, in.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.factory.Create(EntryInput{
		Type: in.Type, Amount: in.Amount, Direction: DirectionOut,
		Channel: in.Channel, Description: in.Description,
		AccountID: in.AccountID, EntityID: in.EntityID, DateKey: in.DateKey,
	})
	if err != nil {
		return Entry{}, err
	}
	if err := ValidateOperation(entry.DateKey, s.lock); err != nil {
		return Entry{}, err
	}
	if err := ValidateTransaction(s.store.All(), entry.Amount, entry.Channel, entry.AccountID); err != nil {
		return Entry{}, err
	}
	if err := s.append(ctx, []Entry{entry}); err != nil {
		return Entry{}, err
	}
	s.recordAudit(ctx, in.Actor, "ledger.expense", entry.ID, map[string]any{"type": entry.Type, "amount": entry.Amount})
	return entry, nil
}

// DebtInput describes recognized revenue not yet collected.
type DebtInput struct {
	Amount      float64
	Description string
	EntityID    string
	DateKey     string
	Actor       string
}

// RecordDebt appends a receivable entry. Debt creation never needs funds.
func (s *Service) RecordDebt(ctx context.Context, in DebtInput) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.factory.Create(EntryInput{
		Type: TypeDebtCreate, Amount: in.Amount, Direction: DirectionIn,
		Channel: ChannelReceivable, Description: in.Description,
		EntityID: in.EntityID, DateKey: in.DateKey,
	})
	if err != nil {
		return Entry{}, err
	}
	if err := ValidateOperation(entry.DateKey, s.lock); err != nil {
		return Entry{}, err
	}
	if err := s.append(ctx, []Entry{entry}); err != nil {
		return Entry{}, err
	}
	s.recordAudit(ctx, in.Actor, "ledger.debt_create", entry.ID, map[string]any{"amount": entry.Amount})
	return entry, nil
}

// DebtPaymentInput describes a customer repaying old debt. Outstanding is
// the customer's current receivable balance, supplied by the caller that
// owns customer records.
type DebtPaymentInput struct {
	Amount      float64
	Outstanding float64
	Channel     Channel
	AccountID   string
	EntityID    string
	DateKey     string
	Actor       string
}

// RecordDebtPayment applies the payment against the outstanding debt and
// books any overflow as fresh session income, in one atomic batch.
func (s *Service) RecordDebtPayment(ctx context.Context, in DebtPaymentInput) ([]Entry, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment must be positive", ErrMalformedEntry)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	applied := in.Amount
	if in.Outstanding < applied {
		applied = in.Outstanding
	}
	extra := in.Amount - applied
	var batch []Entry
	if applied > 0 {
		entry, err := s.factory.Create(EntryInput{
			Type: TypeDebtPayment, Amount: applied, Direction: DirectionIn,
			Channel: in.Channel, Description: "Debt payment",
			AccountID: in.AccountID, EntityID: in.EntityID, DateKey: in.DateKey,
		})
		if err != nil {
			return nil, err
		}
		batch = append(batch, entry)
	}
	if extra > 0 {
		entry, err := s.factory.Create(EntryInput{
			Type: TypeIncomeSession, Amount: extra, Direction: DirectionIn,
			Channel: in.Channel, Description: "Credit top-up",
			AccountID: in.AccountID, EntityID: in.EntityID, DateKey: in.DateKey,
		})
		if err != nil {
			return nil, err
		}
		batch = append(batch, entry)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: nothing to apply", ErrMalformedEntry)
	}
	if err := ValidateOperation(batch[0].DateKey, s.lock); err != nil {
		return nil, err
	}
	if err := s.append(ctx, batch); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, in.Actor, "ledger.debt_payment", batch[0].ID, map[string]any{"applied": applied, "extra": extra})
	return batch, nil
}

// PartnerDrawKind distinguishes partner money movements.
type PartnerDrawKind string

const (
	DrawWithdrawal  PartnerDrawKind = "withdrawal"
	DrawDeposit     PartnerDrawKind = "deposit"
	DrawDebtPayment PartnerDrawKind = "debt_payment"
)

// PartnerDrawInput describes an owner taking out or injecting money.
type PartnerDrawInput struct {
	PartnerID string
	Kind      PartnerDrawKind
	Amount    float64
	Channel   Channel
	AccountID string
	Note      string
	DateKey   string
}

// RecordPartnerDraw appends one partner movement. Withdrawals are out
// movements and must pass the funds check; deposits and debt payments flow
// in. The partner display name is snapshotted at entry time.
func (s *Service) RecordPartnerDraw(ctx context.Context, in PartnerDrawInput) (Entry, error) {
	name := s.partnerName(in.PartnerID)
	if name == "" {
		return Entry{}, fmt.Errorf("%w: unknown partner %q", ErrMalformedEntry, in.PartnerID)
	}
	var entryType TransactionType
	direction := DirectionIn
	switch in.Kind {
	case DrawWithdrawal:
		entryType = TypePartnerWithdrawal
		direction = DirectionOut
	case DrawDeposit:
		entryType = TypePartnerDeposit
	case DrawDebtPayment:
		entryType = TypePartnerDebtPayment
	default:
		return Entry{}, fmt.Errorf("%w: unknown draw kind %q", ErrMalformedEntry, in.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.factory.Create(EntryInput{
		Type: entryType, Amount: in.Amount, Direction: direction,
		Channel: in.Channel, Description: in.Note,
		AccountID: in.AccountID, PartnerID: in.PartnerID, PartnerName: name,
		DateKey: in.DateKey,
	})
	if err != nil {
		return Entry{}, err
	}
	if err := ValidateOperation(entry.DateKey, s.lock); err != nil {
		return Entry{}, err
	}
	if direction == DirectionOut {
		if err := ValidateTransaction(s.store.All(), entry.Amount, entry.Channel, entry.AccountID); err != nil {
			return Entry{}, err
		}
	}
	if err := s.append(ctx, []Entry{entry}); err != nil {
		return Entry{}, err
	}
	s.recordAudit(ctx, in.PartnerID, "ledger.partner_draw", entry.ID, map[string]any{"kind": in.Kind, "amount": entry.Amount})
	return entry, nil
}

// LiquidationInput describes moving physical cash into a bank account.
type LiquidationInput struct {
	PartnerID       string
	Amount          float64
	TargetAccountID string
	EntityID        string
	DateKey         string
}

// Liquidate appends the balanced out/cash + in/bank pair sharing one
// reference id. Both entries are persisted together or not at all.
func (s *Service) Liquidate(ctx context.Context, in LiquidationInput) ([]Entry, error) {
	if in.TargetAccountID == "" {
		return nil, fmt.Errorf("%w: target bank account required", ErrMalformedEntry)
	}
	name := s.partnerName(in.PartnerID)
	if name == "" {
		return nil, fmt.Errorf("%w: unknown partner %q", ErrMalformedEntry, in.PartnerID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := NewReferenceID()
	out, err := s.factory.Create(EntryInput{
		Type: TypeLiquidationToApp, Amount: in.Amount, Direction: DirectionOut,
		Channel: ChannelCash, Description: "Liquidation by " + name,
		EntityID: in.EntityID, PartnerID: in.PartnerID, PartnerName: name,
		DateKey: in.DateKey, ReferenceID: ref,
	})
	if err != nil {
		return nil, err
	}
	dep, err := s.factory.Create(EntryInput{
		Type: TypeLiquidationToApp, Amount: in.Amount, Direction: DirectionIn,
		Channel: ChannelBank, Description: "Liquidation deposit by " + name,
		AccountID: in.TargetAccountID, EntityID: in.EntityID,
		PartnerID: in.PartnerID, PartnerName: name,
		DateKey: in.DateKey, ReferenceID: ref,
	})
	if err != nil {
		return nil, err
	}
	if err := ValidateOperation(out.DateKey, s.lock); err != nil {
		return nil, err
	}
	if err := ValidateTransaction(s.store.All(), in.Amount, ChannelCash, ""); err != nil {
		return nil, err
	}
	batch := []Entry{out, dep}
	if err := s.append(ctx, batch); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, in.PartnerID, "ledger.liquidation", ref, map[string]any{"amount": in.Amount, "target": in.TargetAccountID})
	return batch, nil
}

// OpeningBalanceInput seeds or adjusts a channel balance.
type OpeningBalanceInput struct {
	Amount      float64
	Channel     Channel
	AccountID   string
	Description string
	DateKey     string
	Actor       string
}

// RecordOpeningBalance appends one opening-balance entry.
func (s *Service) RecordOpeningBalance(ctx context.Context, in OpeningBalanceInput) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.factory.Create(EntryInput{
		Type: TypeOpeningBalance, Amount: in.Amount, Direction: DirectionIn,
		Channel: in.Channel, Description: in.Description,
		AccountID: in.AccountID, DateKey: in.DateKey,
	})
	if err != nil {
		return Entry{}, err
	}
	if err := ValidateOperation(entry.DateKey, s.lock); err != nil {
		return Entry{}, err
	}
	if err := s.append(ctx, []Entry{entry}); err != nil {
		return Entry{}, err
	}
	s.recordAudit(ctx, in.Actor, "ledger.opening_balance", entry.ID, map[string]any{"amount": entry.Amount, "channel": entry.Channel})
	return entry, nil
}

// FixNegativeCash appends a compensating adjustment equal to the cash
// deficit. No-op (nil entry) when cash is not negative; history is never
// edited, only compensated.
func (s *Service) FixNegativeCash(ctx context.Context, actor string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cash := Balance(s.store.All(), ChannelCash)
	if cash >= 0 {
		return nil, nil
	}
	entry, err := s.factory.Create(EntryInput{
		Type: TypeOpeningBalance, Amount: -cash, Direction: DirectionIn,
		Channel: ChannelCash, Description: "Automatic adjustment for negative cash balance",
	})
	if err != nil {
		return nil, err
	}
	if err := s.append(ctx, []Entry{entry}); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "ledger.fix_negative_cash", entry.ID, map[string]any{"amount": entry.Amount})
	return &entry, nil
}

// ArchiveInput freezes a period: derives the electricity expense from the
// submitted meter reading, snapshots the range, and locks it.
type ArchiveInput struct {
	Start               string
	End                 string
	CurrentMeterReading float64
	Notes               string
	Actor               string
}

// ArchiveInventory performs the end-of-period close. The electricity
// expense is dated to the period end and included in the frozen snapshot;
// the stored meter reading advances and the period locks up to End. The
// snapshot stays re-derivable from the ledger for the same range.
func (s *Service) ArchiveInventory(ctx context.Context, in ArchiveInput) (Snapshot, error) {
	if !ValidDateKey(in.Start) || !ValidDateKey(in.End) || in.End < in.Start {
		return Snapshot{}, fmt.Errorf("%w: bad archive range %q..%q", ErrMalformedEntry, in.Start, in.End)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ValidateOperation(in.End, s.lock); err != nil {
		return Snapshot{}, err
	}
	pricing := s.pricing
	if pricing.ElectricityKwhPrice <= 0 {
		return Snapshot{}, ErrKwhPriceUnset
	}
	kwhUsed := in.CurrentMeterReading - pricing.LastElectricityMeterReading
	if kwhUsed < 0 {
		return Snapshot{}, ErrMeterReadingRegressed
	}
	elecAmount := kwhUsed * pricing.ElectricityKwhPrice
	elecEntry, err := s.factory.Create(EntryInput{
		Type: TypeExpenseElectricity, Amount: elecAmount, Direction: DirectionOut,
		Channel: ChannelCash,
		Description: fmt.Sprintf("Electricity (meter %.1f, %.1f kWh)", in.CurrentMeterReading, kwhUsed),
		DateKey:     in.End,
	})
	if err != nil {
		return Snapshot{}, err
	}
	if err := ValidateTransaction(s.store.All(), elecAmount, ChannelCash, ""); err != nil {
		return Snapshot{}, err
	}

	updated := append([]Entry{elecEntry}, s.store.All()...)
	snap := CalcInventory(updated, in.Start, in.End, s.partners, pricing)
	count, err := s.repo.CountSnapshots(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ledger: count snapshots: %w", err)
	}
	snap.ID = uuid.New().String()
	snap.ArchiveID = fmt.Sprintf("INV-%d-%d", s.now().Year(), count+1)
	snap.CreatedAt = s.now()
	snap.Electricity = &ElectricityMetadata{
		LastReading:    pricing.LastElectricityMeterReading,
		CurrentReading: in.CurrentMeterReading,
		KwhUsed:        kwhUsed,
		KwhPrice:       pricing.ElectricityKwhPrice,
		Amount:         elecAmount,
	}

	newPricing := pricing
	newPricing.LastElectricityMeterReading = in.CurrentMeterReading
	lock := PeriodLock{
		LockID:      uuid.New().String(),
		LockedUntil: in.End,
		CreatedAt:   s.now(),
		Notes:       "Auto-locked after inventory archive",
	}
	if in.Notes != "" {
		lock.Notes = in.Notes
	}

	if err := s.repo.Archive(ctx, []Entry{elecEntry}, snap, newPricing, lock); err != nil {
		return Snapshot{}, fmt.Errorf("ledger: archive: %w", err)
	}
	s.store.Append(elecEntry)
	s.pricing = newPricing
	s.lock = &lock
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	s.recordAudit(ctx, in.Actor, "ledger.archive", snap.ID, map[string]any{
		"range":       in.Start + ".." + in.End,
		"electricity": elecAmount,
		"lockedUntil": lock.LockedUntil,
	})
	return snap, nil
}

// Unlock releases the active period lock. An explicit administrative
// action with no date constraint.
func (s *Service) Unlock(ctx context.Context, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lock == nil {
		return ErrNoActiveLock
	}
	if err := s.repo.DeleteLock(ctx); err != nil {
		return fmt.Errorf("ledger: delete lock: %w", err)
	}
	released := s.lock.LockID
	s.lock = nil
	s.recordAudit(ctx, actor, "ledger.unlock", released, nil)
	return nil
}

// Migrate runs the one-shot legacy import. It refuses to run over an
// existing ledger and persists the converted history atomically.
func (s *Service) Migrate(ctx context.Context, data LegacyData, actor string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.Len() > 0 {
		return nil, ErrLedgerNotEmpty
	}
	entries, err := MigrateLegacy(data, s.partners, s.factory)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if err := s.append(ctx, entries); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "ledger.migrate", "migration", map[string]any{"entries": len(entries)})
	return entries, nil
}
