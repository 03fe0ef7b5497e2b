package ledger

import "time"

// PartnerShare is one shareholder's slice of a snapshot: the base share,
// its channel split, and the final payout net of window withdrawals.
type PartnerShare struct {
	PartnerID          string  `json:"partnerId"`
	Name               string  `json:"name"`
	SharePercent       float64 `json:"sharePercent"`
	BaseShare          float64 `json:"baseShare"`
	CashShareAvailable float64 `json:"cashShareAvailable"`
	BankShareAvailable float64 `json:"bankShareAvailable"`
	NetWithdrawal      float64 `json:"netWithdrawal"`
	FinalPayoutCash    float64 `json:"finalPayoutCash"`
	FinalPayoutBank    float64 `json:"finalPayoutBank"`
	FinalPayoutTotal   float64 `json:"finalPayoutTotal"`
}

// ElectricityMetadata records the meter math behind an archived
// electricity expense.
type ElectricityMetadata struct {
	LastReading    float64 `json:"lastReading"`
	CurrentReading float64 `json:"currentReading"`
	KwhUsed        float64 `json:"kwhUsed"`
	KwhPrice       float64 `json:"kwhPrice"`
	Amount         float64 `json:"amount"`
}

// Snapshot is the derived profit-distribution view for a closed dateKey
// range. It is a view over the ledger, re-derivable at any time; the
// caller may freeze it into storage as an archival record.
type Snapshot struct {
	ID                 string               `json:"id"`
	ArchiveID          string               `json:"archiveId"`
	PeriodStart        string               `json:"periodStart"`
	PeriodEnd          string               `json:"periodEnd"`
	CreatedAt          time.Time            `json:"createdAt"`
	TotalPaidRevenue   float64              `json:"totalPaidRevenue"`
	TotalCashRevenue   float64              `json:"totalCashRevenue"`
	TotalBankRevenue   float64              `json:"totalBankRevenue"`
	TotalDebtRevenue   float64              `json:"totalDebtRevenue"`
	TotalInvoice       float64              `json:"totalInvoice"`
	TotalExpenses      float64              `json:"totalExpenses"`
	TotalCashExpenses  float64              `json:"totalCashExpenses"`
	TotalBankExpenses  float64              `json:"totalBankExpenses"`
	NetCashInPlace     float64              `json:"netCashInPlace"`
	NetBankInPlace     float64              `json:"netBankInPlace"`
	GrossProfit        float64              `json:"grossProfit"`
	DevCut             float64              `json:"devCut"`
	NetProfitPaid      float64              `json:"netProfitPaid"`
	DevPercentSnapshot float64              `json:"devPercentSnapshot"`
	Partners           []PartnerShare       `json:"partners"`
	Electricity        *ElectricityMetadata `json:"electricityMetadata,omitempty"`
}

// CalcInventory computes the profit-distribution snapshot for dateKey in
// [start, end]. The function is pure: identical ledger, range, partner
// list and pricing yield identical numbers, so a live preview and a
// frozen archive agree exactly.
func CalcInventory(entries []Entry, start, end string, partners []Partner, cfg PricingConfig) Snapshot {
	var (
		cashIncome, bankIncome     float64
		cashExpenses, bankExpenses float64
		liquidated, debtCreated    float64
	)
	var window []Entry
	for _, e := range entries {
		if e.DateKey < start || e.DateKey > end {
			continue
		}
		window = append(window, e)
		switch {
		case e.Type.IsIncome() && e.Channel == ChannelCash:
			cashIncome += e.Amount
		case e.Type.IsIncome() && e.Channel == ChannelBank:
			bankIncome += e.Amount
		case e.Type.IsExpense() && e.Channel == ChannelCash:
			cashExpenses += e.Amount
		case e.Type.IsExpense() && e.Channel == ChannelBank:
			bankExpenses += e.Amount
		case e.Type == TypeDebtCreate:
			debtCreated += e.Amount
		}
		if e.Type == TypeLiquidationToApp && e.Channel == ChannelCash && e.Direction == DirectionOut {
			liquidated += e.Amount
		}
	}

	// Net source per channel. A channel that net-consumed money contributes
	// nothing to the distribution ratio, but the raw values stay visible in
	// the cash/bank expense totals.
	netCashSource := cashIncome - cashExpenses - liquidated
	netBankSource := bankIncome - bankExpenses + liquidated
	totalNetSource := clampZero(netCashSource) + clampZero(netBankSource)
	cashRatio := 1.0
	bankRatio := 0.0
	if totalNetSource > 0 {
		cashRatio = clampZero(netCashSource) / totalNetSource
		bankRatio = clampZero(netBankSource) / totalNetSource
	}

	totalPaidRevenue := cashIncome + bankIncome
	totalInvoice := totalPaidRevenue + debtCreated
	totalExpenses := cashExpenses + bankExpenses
	grossProfit := totalInvoice - totalExpenses
	var devCut float64
	if grossProfit > 0 {
		devCut = grossProfit * cfg.DevPercent / 100
	}
	netProfitPaid := grossProfit - devCut

	shares := make([]PartnerShare, 0, len(partners))
	for _, p := range partners {
		baseShare := clampZero(netProfitPaid * p.Percent / 100)
		var cashDrawn, bankDrawn, repaid float64
		for _, e := range window {
			if e.PartnerID != p.ID {
				continue
			}
			switch e.Type {
			case TypePartnerWithdrawal:
				if e.Channel == ChannelCash {
					cashDrawn += e.Amount
				} else if e.Channel == ChannelBank {
					bankDrawn += e.Amount
				}
			case TypePartnerDeposit, TypePartnerDebtPayment:
				repaid += e.Amount
			}
		}
		netWithdrawal := cashDrawn + bankDrawn - repaid
		cashShare := baseShare * cashRatio
		bankShare := baseShare * bankRatio
		shares = append(shares, PartnerShare{
			PartnerID:          p.ID,
			Name:               p.Name,
			SharePercent:       p.Percent / 100,
			BaseShare:          baseShare,
			CashShareAvailable: cashShare,
			BankShareAvailable: bankShare,
			NetWithdrawal:      netWithdrawal,
			FinalPayoutCash:    cashShare - cashDrawn + repaid,
			FinalPayoutBank:    bankShare - bankDrawn,
			FinalPayoutTotal:   baseShare - netWithdrawal,
		})
	}

	return Snapshot{
		PeriodStart:        start,
		PeriodEnd:          end,
		TotalPaidRevenue:   totalPaidRevenue,
		TotalCashRevenue:   cashIncome,
		TotalBankRevenue:   bankIncome,
		TotalDebtRevenue:   debtCreated,
		TotalInvoice:       totalInvoice,
		TotalExpenses:      totalExpenses,
		TotalCashExpenses:  cashExpenses,
		TotalBankExpenses:  bankExpenses,
		NetCashInPlace:     Balance(entries, ChannelCash),
		NetBankInPlace:     Balance(entries, ChannelBank),
		GrossProfit:        grossProfit,
		DevCut:             devCut,
		NetProfitPaid:      netProfitPaid,
		DevPercentSnapshot: cfg.DevPercent,
		Partners:           shares,
	}
}

// DayCyclePreview summarises the still-open business cycle for end-of-day
// review. The window is a precise timestamp range, not calendar dates.
type DayCyclePreview struct {
	DateKey      string    `json:"dateKey"`
	MonthKey     string    `json:"monthKey"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	TotalRevenue float64   `json:"totalRevenue"`
	CashRevenue  float64   `json:"cashRevenue"`
	BankRevenue  float64   `json:"bankRevenue"`
	TotalDebt    float64   `json:"totalDebt"`
	TotalInvoice float64   `json:"totalInvoice"`
	TotalCosts   float64   `json:"totalOperationalCosts"`
	NetCashFlow  float64   `json:"netCashFlow"`
	NetBankFlow  float64   `json:"netBankFlow"`
	GrossProfit  float64   `json:"grossProfit"`
	RecordCount  int       `json:"recordCount"`
}

// CalcEndDayPreview aggregates entries stamped inside [cycleStart, now]
// for the day-closing review.
func CalcEndDayPreview(entries []Entry, cycleStart, now time.Time, loc *time.Location) DayCyclePreview {
	dateKey := DateKeyFromTime(cycleStart, loc)
	preview := DayCyclePreview{
		DateKey:   dateKey,
		MonthKey:  dateKey[:7],
		StartTime: cycleStart,
		EndTime:   now,
	}
	sessions := make(map[string]struct{})
	for _, e := range entries {
		if e.Timestamp.Before(cycleStart) || e.Timestamp.After(now) {
			continue
		}
		if e.Type.IsIncome() {
			switch e.Channel {
			case ChannelCash:
				preview.CashRevenue += e.Amount
			case ChannelBank:
				preview.BankRevenue += e.Amount
			}
		}
		if e.Type == TypeDebtCreate {
			preview.TotalDebt += e.Amount
		}
		if e.Type.IsExpense() {
			preview.TotalCosts += e.Amount
		}
		switch e.Channel {
		case ChannelCash:
			if e.Direction == DirectionIn {
				preview.NetCashFlow += e.Amount
			} else {
				preview.NetCashFlow -= e.Amount
			}
		case ChannelBank:
			if e.Direction == DirectionIn {
				preview.NetBankFlow += e.Amount
			} else {
				preview.NetBankFlow -= e.Amount
			}
		}
		if e.Type == TypeIncomeSession && e.EntityID != "" {
			sessions[e.EntityID] = struct{}{}
		}
	}
	preview.TotalRevenue = preview.CashRevenue + preview.BankRevenue
	preview.TotalInvoice = preview.TotalRevenue + preview.TotalDebt
	preview.GrossProfit = preview.TotalRevenue - preview.TotalCosts
	preview.RecordCount = len(sessions)
	return preview
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
