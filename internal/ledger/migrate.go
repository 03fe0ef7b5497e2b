package ledger

import (
	"fmt"
	"sort"
	"time"
)

// Legacy payloads mirror the pre-ledger records kept by the hosting
// application before the central ledger existed. The migrator converts
// them through the same entry factory used for live operations, so the
// imported history obeys identical invariants.

// LegacySessionRecord is a finished workspace session with its settled
// amounts.
type LegacySessionRecord struct {
	ID            string    `json:"id"`
	CustomerName  string    `json:"customerName"`
	EndTime       time.Time `json:"endTime"`
	CashPaid      float64   `json:"cashPaid"`
	BankPaid      float64   `json:"bankPaid"`
	RemainingDebt float64   `json:"remainingDebt"`
	BankAccountID string    `json:"bankAccountId,omitempty"`
}

// LegacyExpense is a recorded expense; Kind distinguishes loan repayments
// and electricity from plain operational spend.
type LegacyExpense struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Kind          string  `json:"kind"`
	Date          string  `json:"date"`
	PaymentMethod Channel `json:"paymentMethod,omitempty"`
	FromAccountID string  `json:"fromAccountId,omitempty"`
}

// LegacyPurchase is an inventory purchase paid from the business.
type LegacyPurchase struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	PaymentMethod Channel `json:"paymentMethod,omitempty"`
	FromAccountID string  `json:"fromAccountId,omitempty"`
}

// LegacyDebtItem is a partner withdrawal (positive amount) or repayment
// (negative amount).
type LegacyDebtItem struct {
	ID            string  `json:"id"`
	PartnerID     string  `json:"partnerId"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Note          string  `json:"note"`
	Channel       Channel `json:"channel,omitempty"`
	BankAccountID string  `json:"bankAccountId,omitempty"`
}

// LegacyCashTransfer is a cash-to-bank liquidation performed by a partner.
type LegacyCashTransfer struct {
	ID              string  `json:"id"`
	PartnerID       string  `json:"partnerId"`
	Amount          float64 `json:"amount"`
	Date            string  `json:"date"`
	TargetAccountID string  `json:"targetAccountId"`
}

// LegacyLoan is accepted for completeness of the legacy payload. Loan
// principals were never cash the business held, so no entries are derived
// from them; repayments arrive as LegacyExpense rows of kind
// "loan_repayment".
type LegacyLoan struct {
	ID        string  `json:"id"`
	Principal float64 `json:"principal"`
}

// LegacyData bundles every pre-ledger collection for the one-shot import.
type LegacyData struct {
	Records   []LegacySessionRecord `json:"records"`
	Expenses  []LegacyExpense       `json:"expenses"`
	Purchases []LegacyPurchase      `json:"purchases"`
	Transfers []LegacyCashTransfer  `json:"transfers"`
	Debts     []LegacyDebtItem      `json:"debts"`
	Loans     []LegacyLoan          `json:"loans"`
}

// MigrateLegacy converts the legacy collections into an equivalent entry
// sequence, stable-sorted ascending by timestamp so chronological queries
// behave correctly immediately after import. Partner names are snapshotted
// from the injected list at migration time.
func MigrateLegacy(data LegacyData, partners []Partner, factory *Factory) ([]Entry, error) {
	names := make(map[string]string, len(partners))
	for _, p := range partners {
		names[p.ID] = p.Name
	}
	partnerName := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return "unknown partner"
	}

	var entries []Entry
	add := func(in EntryInput, at time.Time) error {
		entry, err := factory.Create(in)
		if err != nil {
			return err
		}
		entry.Migrated = true
		if !at.IsZero() {
			entry.Timestamp = at
		}
		entries = append(entries, entry)
		return nil
	}

	// Dated legacy rows carry a calendar date only; pin them to noon in the
	// business timezone so chronological ordering is stable.
	timestampFor := func(date string) time.Time {
		t, err := time.ParseInLocation(DateKeyLayout, date, factory.Location())
		if err != nil {
			return time.Time{}
		}
		return t.Add(12 * time.Hour)
	}

	for _, r := range data.Records {
		date := DateKeyFromTime(r.EndTime, factory.Location())
		if r.CashPaid > 0 {
			if err := add(EntryInput{
				Type: TypeIncomeSession, Amount: r.CashPaid, Direction: DirectionIn,
				Channel: ChannelCash, Description: "Session: " + r.CustomerName,
				EntityID: r.ID, DateKey: date,
			}, r.EndTime); err != nil {
				return nil, fmt.Errorf("migrate record %s: %w", r.ID, err)
			}
		}
		if r.BankPaid > 0 {
			if err := add(EntryInput{
				Type: TypeIncomeSession, Amount: r.BankPaid, Direction: DirectionIn,
				Channel: ChannelBank, Description: "Session: " + r.CustomerName,
				AccountID: r.BankAccountID, EntityID: r.ID, DateKey: date,
			}, r.EndTime); err != nil {
				return nil, fmt.Errorf("migrate record %s: %w", r.ID, err)
			}
		}
		if r.RemainingDebt > 0 {
			if err := add(EntryInput{
				Type: TypeDebtCreate, Amount: r.RemainingDebt, Direction: DirectionIn,
				Channel: ChannelReceivable, Description: "Debt: " + r.CustomerName,
				EntityID: r.ID, DateKey: date,
			}, r.EndTime); err != nil {
				return nil, fmt.Errorf("migrate record %s: %w", r.ID, err)
			}
		}
	}

	for _, e := range data.Expenses {
		entryType := TypeExpenseOperational
		switch e.Kind {
		case "loan_repayment":
			entryType = TypeLoanRepayment
		case "electricity":
			entryType = TypeExpenseElectricity
		}
		channel := e.PaymentMethod
		if channel == "" {
			channel = ChannelCash
		}
		if err := add(EntryInput{
			Type: entryType, Amount: e.Amount, Direction: DirectionOut,
			Channel: channel, Description: e.Name,
			AccountID: e.FromAccountID, EntityID: e.ID, DateKey: e.Date,
		}, timestampFor(e.Date)); err != nil {
			return nil, fmt.Errorf("migrate expense %s: %w", e.ID, err)
		}
	}

	for _, p := range data.Purchases {
		channel := p.PaymentMethod
		if channel == "" {
			channel = ChannelCash
		}
		if err := add(EntryInput{
			Type: TypeExpensePurchase, Amount: p.Amount, Direction: DirectionOut,
			Channel: channel, Description: "Purchase: " + p.Name,
			AccountID: p.FromAccountID, EntityID: p.ID, DateKey: p.Date,
		}, timestampFor(p.Date)); err != nil {
			return nil, fmt.Errorf("migrate purchase %s: %w", p.ID, err)
		}
	}

	for _, d := range data.Debts {
		entryType := TypePartnerWithdrawal
		direction := DirectionOut
		label := "Partner withdrawal: "
		if d.Amount < 0 {
			entryType = TypePartnerDeposit
			direction = DirectionIn
			label = "Partner repayment: "
		}
		channel := d.Channel
		if channel == "" {
			channel = ChannelCash
		}
		amount := d.Amount
		if amount < 0 {
			amount = -amount
		}
		if err := add(EntryInput{
			Type: entryType, Amount: amount, Direction: direction,
			Channel: channel, Description: label + d.Note,
			AccountID: d.BankAccountID, EntityID: d.ID,
			PartnerID: d.PartnerID, PartnerName: partnerName(d.PartnerID),
			DateKey: d.Date,
		}, timestampFor(d.Date)); err != nil {
			return nil, fmt.Errorf("migrate debt %s: %w", d.ID, err)
		}
	}

	for _, t := range data.Transfers {
		ref := NewReferenceID()
		name := partnerName(t.PartnerID)
		if err := add(EntryInput{
			Type: TypeLiquidationToApp, Amount: t.Amount, Direction: DirectionOut,
			Channel: ChannelCash, Description: "Liquidation by " + name,
			EntityID: t.ID, PartnerID: t.PartnerID, PartnerName: name,
			DateKey: t.Date, ReferenceID: ref,
		}, timestampFor(t.Date)); err != nil {
			return nil, fmt.Errorf("migrate transfer %s: %w", t.ID, err)
		}
		if err := add(EntryInput{
			Type: TypeLiquidationToApp, Amount: t.Amount, Direction: DirectionIn,
			Channel: ChannelBank, Description: "Liquidation deposit by " + name,
			AccountID: t.TargetAccountID, EntityID: t.ID,
			PartnerID: t.PartnerID, PartnerName: name,
			DateKey: t.Date, ReferenceID: ref,
		}, timestampFor(t.Date)); err != nil {
			return nil, fmt.Errorf("migrate transfer %s: %w", t.ID, err)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}
