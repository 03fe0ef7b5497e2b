package ledger

import (
	"errors"
	"time"
)

// Channel enumerates the logical locations money can sit in or move through.
type Channel string

const (
	ChannelCash Channel = "cash"
	ChannelBank Channel = "bank"
	// ChannelReceivable tracks recognized revenue not yet collected. It is
	// excluded from cash/bank balance arithmetic.
	ChannelReceivable Channel = "receivable"
)

// Valid reports whether the channel is part of the closed enumeration.
func (c Channel) Valid() bool {
	switch c {
	case ChannelCash, ChannelBank, ChannelReceivable:
		return true
	}
	return false
}

// Direction enumerates movement directions relative to a channel.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Valid reports whether the direction is part of the closed enumeration.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// TransactionType enumerates why money moved. The set is closed; values are
// the wire/storage vocabulary shared with every collaborator.
type TransactionType string

const (
	// Income (real money in).
	TypeIncomeSession TransactionType = "INCOME_SESSION"
	TypeIncomeProduct TransactionType = "INCOME_PRODUCT"
	TypeDebtPayment   TransactionType = "DEBT_PAYMENT"

	// Receivable tracking, not money.
	TypeDebtCreate TransactionType = "DEBT_CREATE"

	// Expenses (real money out).
	TypeExpenseOperational TransactionType = "EXPENSE_OPERATIONAL"
	TypeExpensePurchase    TransactionType = "EXPENSE_PURCHASE"
	TypeExpenseElectricity TransactionType = "EXPENSE_ELECTRICITY"
	TypeLoanRepayment      TransactionType = "LOAN_REPAYMENT"

	// Partner actions.
	TypePartnerWithdrawal  TransactionType = "PARTNER_WITHDRAWAL"
	TypePartnerDeposit     TransactionType = "PARTNER_DEPOSIT"
	TypePartnerDebtPayment TransactionType = "PARTNER_DEBT_PAYMENT"

	// Internal movements.
	TypeLiquidationToApp TransactionType = "LIQUIDATION_TO_APP"
	TypeInternalTransfer TransactionType = "INTERNAL_TRANSFER"
	TypeOpeningBalance   TransactionType = "OPENING_BALANCE"
)

// Valid reports whether the type is part of the closed enumeration.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeIncomeSession, TypeIncomeProduct, TypeDebtPayment, TypeDebtCreate,
		TypeExpenseOperational, TypeExpensePurchase, TypeExpenseElectricity,
		TypeLoanRepayment, TypePartnerWithdrawal, TypePartnerDeposit,
		TypePartnerDebtPayment, TypeLiquidationToApp, TypeInternalTransfer,
		TypeOpeningBalance:
		return true
	}
	return false
}

// IsIncome reports whether the type counts as collected revenue.
func (t TransactionType) IsIncome() bool {
	return t == TypeIncomeSession || t == TypeIncomeProduct || t == TypeDebtPayment
}

// IsExpense reports whether the type counts as an operating expense,
// including loan repayments and electricity.
func (t TransactionType) IsExpense() bool {
	return t == TypeExpenseOperational || t == TypeExpensePurchase ||
		t == TypeExpenseElectricity || t == TypeLoanRepayment
}

// BalanceTolerance absorbs floating-point rounding noise in balance checks.
// A cash or bank balance may dip this far below zero before the validator
// treats the movement as a real shortfall.
const BalanceTolerance = 0.5

// Entry is the only persisted financial fact. Entries are immutable once
// appended; corrections happen by appending compensating entries.
type Entry struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	DateKey     string          `json:"dateKey"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Direction   Direction       `json:"direction"`
	Channel     Channel         `json:"channel"`
	AccountID   string          `json:"accountId,omitempty"`
	EntityID    string          `json:"entityId,omitempty"`
	ReferenceID string          `json:"referenceId,omitempty"`
	Description string          `json:"description"`
	PartnerID   string          `json:"partnerId,omitempty"`
	PartnerName string          `json:"partnerName,omitempty"`
	Migrated    bool            `json:"migrated,omitempty"`
}

// PeriodLock is the watermark date gate. While present, any mutating
// operation dated on or before LockedUntil must fail.
type PeriodLock struct {
	LockID      string    `json:"lockId"`
	LockedUntil string    `json:"lockedUntil"`
	CreatedAt   time.Time `json:"createdAt"`
	Notes       string    `json:"notes,omitempty"`
}

// Partner is one fixed-percentage profit shareholder. The list is injected
// process-wide configuration; percentages across all partners sum to 100.
type Partner struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// BankAccount is read-only collaborator data used to enumerate per-account
// balances and resolve display names.
type BankAccount struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// PricingConfig is read-only input to profit distribution and
// electricity-expense construction.
type PricingConfig struct {
	DevPercent                  float64 `json:"devPercent"`
	ElectricityKwhPrice         float64 `json:"electricityKwhPrice"`
	LastElectricityMeterReading float64 `json:"lastElectricityMeterReading"`
}

var (
	// ErrMalformedEntry rejects entries at construction time: negative
	// amount, unknown enum value, or a bank entry without an account id.
	ErrMalformedEntry = errors.New("ledger: malformed entry")
	// ErrInsufficientFunds indicates an out movement would drive a cash or
	// bank balance below the tolerance.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	// ErrPeriodLocked indicates the operation date falls inside a locked
	// period.
	ErrPeriodLocked = errors.New("ledger: period locked")
	// ErrLedgerNotEmpty indicates migration was attempted over existing
	// entries.
	ErrLedgerNotEmpty = errors.New("ledger: ledger not empty")
	// ErrNoActiveLock indicates an unlock without an installed lock.
	ErrNoActiveLock = errors.New("ledger: no active period lock")
	// ErrSnapshotNotFound indicates a missing archived snapshot.
	ErrSnapshotNotFound = errors.New("ledger: snapshot not found")
	// ErrMeterReadingRegressed indicates the submitted electricity meter
	// reading is below the stored one.
	ErrMeterReadingRegressed = errors.New("ledger: meter reading below last recorded value")
	// ErrKwhPriceUnset indicates archiving was attempted without a
	// configured electricity price.
	ErrKwhPriceUnset = errors.New("ledger: electricity kwh price not configured")
)

// ValidatePartners checks the injected shareholder list: ids present and
// percentages summing to 100 within rounding tolerance.
func ValidatePartners(partners []Partner) error {
	if len(partners) == 0 {
		return errors.New("ledger: partner list required")
	}
	var total float64
	seen := make(map[string]struct{}, len(partners))
	for _, p := range partners {
		if p.ID == "" || p.Name == "" {
			return errors.New("ledger: partner id and name required")
		}
		if p.Percent <= 0 {
			return errors.New("ledger: partner percent must be positive")
		}
		if _, dup := seen[p.ID]; dup {
			return errors.New("ledger: duplicate partner id")
		}
		seen[p.ID] = struct{}{}
		total += p.Percent
	}
	if total < 99.99 || total > 100.01 {
		return errors.New("ledger: partner percentages must sum to 100")
	}
	return nil
}
