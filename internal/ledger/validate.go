package ledger

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var reportPrinter = message.NewPrinter(language.English)

// ValidateOperation gates a mutating operation against the active period
// lock. A nil lock always passes; otherwise dates on or before the
// watermark fail.
func ValidateOperation(dateKey string, lock *PeriodLock) error {
	if lock == nil {
		return nil
	}
	if dateKey <= lock.LockedUntil {
		return fmt.Errorf("%w: operations before %s are frozen", ErrPeriodLocked, lock.LockedUntil)
	}
	return nil
}

// ValidateTransaction checks that an out movement of amount on the channel
// keeps the balance above the rounding tolerance. Receivable movements
// never need funds. It must succeed before any out entry is appended;
// there is no rollback after the fact.
func ValidateTransaction(entries []Entry, amount float64, channel Channel, accountID string) error {
	if channel == ChannelReceivable {
		return nil
	}
	balance := channelBalance(entries, channel, accountID)
	if balance-amount < -BalanceTolerance {
		return fmt.Errorf("%w: %s balance %s cannot cover %s",
			ErrInsufficientFunds, channel,
			reportPrinter.Sprintf("%.2f", balance),
			reportPrinter.Sprintf("%.2f", amount))
	}
	return nil
}

// CheckIntegrity scans the full entry set for known-bad states and returns
// human-readable problem descriptions. Findings are advisory; they never
// block operations. Negative cash cannot arise through validated
// operations but can appear after a legacy migration.
func CheckIntegrity(entries []Entry) []string {
	var problems []string
	if cash := Balance(entries, ChannelCash); cash < -BalanceTolerance {
		problems = append(problems, reportPrinter.Sprintf("Critical: negative cash balance (%.2f)", cash))
	}
	for _, e := range entries {
		if e.Channel == ChannelBank && e.AccountID == "" {
			problems = append(problems, fmt.Sprintf("Entry %s: bank movement without account id", e.ID))
		}
	}
	for ref, net := range referenceNets(entries) {
		if net > BalanceTolerance || net < -BalanceTolerance {
			problems = append(problems, reportPrinter.Sprintf("Reference %s: unbalanced pair, net %.2f", ref, net))
		}
	}
	return problems
}

// referenceNets sums signed cash/bank amounts per referenceId. A balanced
// transfer pair nets to zero.
func referenceNets(entries []Entry) map[string]float64 {
	nets := make(map[string]float64)
	for _, e := range entries {
		if e.ReferenceID == "" || e.Channel == ChannelReceivable {
			continue
		}
		if e.Direction == DirectionIn {
			nets[e.ReferenceID] += e.Amount
		} else {
			nets[e.ReferenceID] -= e.Amount
		}
	}
	return nets
}
