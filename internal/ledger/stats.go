package ledger

import (
	"fmt"
	"time"
)

// Balance folds in minus out over entries matching the channel. A
// receivable balance is outstanding customer debt, never cash; callers must
// not combine it with cash/bank totals.
func Balance(entries []Entry, channel Channel) float64 {
	var total float64
	for _, e := range entries {
		if e.Channel != channel {
			continue
		}
		switch e.Direction {
		case DirectionIn:
			total += e.Amount
		case DirectionOut:
			total -= e.Amount
		}
	}
	return total
}

// AccountBalance folds in minus out over bank entries for one account.
func AccountBalance(entries []Entry, accountID string) float64 {
	var total float64
	for _, e := range entries {
		if e.Channel != ChannelBank || e.AccountID != accountID {
			continue
		}
		switch e.Direction {
		case DirectionIn:
			total += e.Amount
		case DirectionOut:
			total -= e.Amount
		}
	}
	return total
}

// channelBalance dispatches to the account-scoped fold when an account id
// is supplied.
func channelBalance(entries []Entry, channel Channel, accountID string) float64 {
	if channel == ChannelBank && accountID != "" {
		return AccountBalance(entries, accountID)
	}
	return Balance(entries, channel)
}

// PeriodStats summarises activity inside an inclusive dateKey range, plus
// the global cash/bank balances for context.
type PeriodStats struct {
	Income        float64 `json:"income"`
	SessionIncome float64 `json:"sessionIncome"`
	ProductIncome float64 `json:"productIncome"`
	Expenses      float64 `json:"expenses"`
	DebtCreated   float64 `json:"debtCreated"`
	DebtPaid      float64 `json:"debtPaid"`
	NetCashFlow   float64 `json:"netCashFlow"`
	TotalNetCash  float64 `json:"totalNetCash"`
	TotalNetBank  float64 `json:"totalNetBank"`
}

// StatsForPeriod aggregates entries whose dateKey falls in [start, end].
func StatsForPeriod(entries []Entry, start, end string) PeriodStats {
	var st PeriodStats
	var cashIn, cashOut float64
	for _, e := range entries {
		if e.DateKey < start || e.DateKey > end {
			continue
		}
		switch {
		case e.Type == TypeIncomeSession:
			st.SessionIncome += e.Amount
			st.Income += e.Amount
		case e.Type == TypeIncomeProduct:
			st.ProductIncome += e.Amount
			st.Income += e.Amount
		case e.Type == TypeDebtPayment:
			st.DebtPaid += e.Amount
		case e.Type == TypeDebtCreate:
			st.DebtCreated += e.Amount
		case e.Type.IsExpense():
			st.Expenses += e.Amount
		}
		if e.Channel == ChannelCash {
			switch e.Direction {
			case DirectionIn:
				cashIn += e.Amount
			case DirectionOut:
				cashOut += e.Amount
			}
		}
	}
	st.NetCashFlow = cashIn - cashOut
	st.TotalNetCash = Balance(entries, ChannelCash)
	st.TotalNetBank = Balance(entries, ChannelBank)
	return st
}

// PartnerStats reports a partner's lifetime withdrawals against
// repayments.
type PartnerStats struct {
	PartnerID   string  `json:"partnerId"`
	Withdrawals float64 `json:"withdrawals"`
	Repayments  float64 `json:"repayments"`
	CurrentNet  float64 `json:"currentNet"`
	Entries     []Entry `json:"entries"`
}

// StatsForPartner folds withdrawals minus deposits and debt payments for
// one partner across all time.
func StatsForPartner(entries []Entry, partnerID string) PartnerStats {
	st := PartnerStats{PartnerID: partnerID}
	for _, e := range entries {
		if e.PartnerID != partnerID {
			continue
		}
		st.Entries = append(st.Entries, e)
		switch e.Type {
		case TypePartnerWithdrawal:
			st.Withdrawals += e.Amount
		case TypePartnerDeposit, TypePartnerDebtPayment:
			st.Repayments += e.Amount
		}
	}
	st.CurrentNet = st.Withdrawals - st.Repayments
	return st
}

// AccountStats is one bank account's in/out/balance breakdown.
type AccountStats struct {
	Account  BankAccount `json:"account"`
	TotalIn  float64     `json:"totalIn"`
	TotalOut float64     `json:"totalOut"`
	Balance  float64     `json:"balance"`
}

// TreasuryStats is the treasury dashboard view: global balances plus the
// per-account breakdown.
type TreasuryStats struct {
	CashBalance      float64        `json:"cashBalance"`
	TotalBankBalance float64        `json:"totalBankBalance"`
	Accounts         []AccountStats `json:"accounts"`
}

// StatsForTreasury computes global cash/bank balances and per-account
// totals for the supplied account list.
func StatsForTreasury(entries []Entry, accounts []BankAccount) TreasuryStats {
	st := TreasuryStats{
		CashBalance:      Balance(entries, ChannelCash),
		TotalBankBalance: Balance(entries, ChannelBank),
	}
	for _, acc := range accounts {
		row := AccountStats{Account: acc}
		for _, e := range entries {
			if e.Channel != ChannelBank || e.AccountID != acc.ID {
				continue
			}
			switch e.Direction {
			case DirectionIn:
				row.TotalIn += e.Amount
			case DirectionOut:
				row.TotalOut += e.Amount
			}
		}
		row.Balance = row.TotalIn - row.TotalOut
		st.Accounts = append(st.Accounts, row)
	}
	return st
}

// DailyCost is one calendar day's revenue/expense/net row in the monthly
// cost analysis.
type DailyCost struct {
	Date          string  `json:"date"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetCash       float64 `json:"netCash"`
	NetBank       float64 `json:"netBank"`
	NetProfit     float64 `json:"netProfit"`
}

// CostAnalysis produces one row per day of monthKey (YYYY-MM) with
// non-zero activity: income (session, product and debt payments),
// expenses, and net cash/bank flow for that single day.
func CostAnalysis(entries []Entry, monthKey string) ([]DailyCost, error) {
	days, err := daysOfMonth(monthKey)
	if err != nil {
		return nil, err
	}
	var rows []DailyCost
	for _, day := range days {
		row := DailyCost{Date: day}
		for _, e := range entries {
			if e.DateKey != day {
				continue
			}
			if e.Type.IsIncome() {
				row.TotalRevenue += e.Amount
			}
			if e.Type.IsExpense() {
				row.TotalExpenses += e.Amount
			}
			switch e.Channel {
			case ChannelCash:
				if e.Direction == DirectionIn {
					row.NetCash += e.Amount
				} else {
					row.NetCash -= e.Amount
				}
			case ChannelBank:
				if e.Direction == DirectionIn {
					row.NetBank += e.Amount
				} else {
					row.NetBank -= e.Amount
				}
			}
		}
		row.NetProfit = row.TotalRevenue - row.TotalExpenses
		if row.TotalRevenue > 0 || row.TotalExpenses > 0 || row.NetCash != 0 || row.NetBank != 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func daysOfMonth(monthKey string) ([]string, error) {
	first, err := time.Parse("2006-01", monthKey)
	if err != nil {
		return nil, fmt.Errorf("ledger: bad month key %q", monthKey)
	}
	last := first.AddDate(0, 1, -1).Day()
	days := make([]string, 0, last)
	for d := 1; d <= last; d++ {
		days = append(days, fmt.Sprintf("%s-%02d", monthKey, d))
	}
	return days, nil
}
