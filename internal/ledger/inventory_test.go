package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPartners = []Partner{
	{ID: "p1", Name: "Ani", Percent: 34},
	{ID: "p2", Name: "Budi", Percent: 33},
	{ID: "p3", Name: "Citra", Percent: 33},
}

// Ledger for one closed month: 600 cash + 300 bank collected, 100 still
// owed, 200 cash spent.
func monthEntries() []Entry {
	bank := mkEntry(TypeIncomeSession, 300, DirectionIn, ChannelBank)
	bank.AccountID = "bca"
	return []Entry{
		mkEntry(TypeIncomeSession, 600, DirectionIn, ChannelCash),
		bank,
		mkEntry(TypeDebtCreate, 100, DirectionIn, ChannelReceivable),
		mkEntry(TypeExpenseOperational, 200, DirectionOut, ChannelCash),
	}
}

func TestCalcInventoryDistributesProfit(t *testing.T) {
	cfg := PricingConfig{DevPercent: 15}
	snap := CalcInventory(monthEntries(), "2024-05-01", "2024-05-31", testPartners, cfg)

	assert.Equal(t, 900.0, snap.TotalPaidRevenue)
	assert.Equal(t, 600.0, snap.TotalCashRevenue)
	assert.Equal(t, 300.0, snap.TotalBankRevenue)
	assert.Equal(t, 100.0, snap.TotalDebtRevenue)
	assert.Equal(t, 1000.0, snap.TotalInvoice)
	assert.Equal(t, 200.0, snap.TotalExpenses)
	assert.Equal(t, 800.0, snap.GrossProfit)
	assert.Equal(t, 120.0, snap.DevCut)
	assert.Equal(t, 680.0, snap.NetProfitPaid)

	require.Len(t, snap.Partners, 3)
	assert.InDelta(t, 231.2, snap.Partners[0].BaseShare, 0.001)
	assert.InDelta(t, 224.4, snap.Partners[1].BaseShare, 0.001)
	assert.InDelta(t, 224.4, snap.Partners[2].BaseShare, 0.001)

	// With no withdrawals, base shares reassemble the distributable profit.
	var sum float64
	for _, p := range snap.Partners {
		sum += p.BaseShare
		assert.Equal(t, p.BaseShare, p.FinalPayoutTotal)
	}
	assert.InDelta(t, snap.NetProfitPaid, sum, 0.001)

	// Channel split follows the net source ratio: 400 cash vs 300 bank.
	assert.InDelta(t, snap.Partners[0].BaseShare*4/7, snap.Partners[0].CashShareAvailable, 0.001)
	assert.InDelta(t, snap.Partners[0].BaseShare*3/7, snap.Partners[0].BankShareAvailable, 0.001)
}

func TestCalcInventoryIsIdempotent(t *testing.T) {
	cfg := PricingConfig{DevPercent: 15}
	entries := monthEntries()
	first := CalcInventory(entries, "2024-05-01", "2024-05-31", testPartners, cfg)
	second := CalcInventory(entries, "2024-05-01", "2024-05-31", testPartners, cfg)
	assert.Equal(t, first, second)
}

func TestCalcInventoryNoDevCutOnLoss(t *testing.T) {
	entries := []Entry{
		mkEntry(TypeIncomeSession, 100, DirectionIn, ChannelCash),
		mkEntry(TypeExpenseOperational, 300, DirectionOut, ChannelCash),
	}
	snap := CalcInventory(entries, "2024-05-01", "2024-05-31", testPartners, PricingConfig{DevPercent: 15})

	assert.Equal(t, -200.0, snap.GrossProfit)
	assert.Equal(t, 0.0, snap.DevCut)
	assert.Equal(t, -200.0, snap.NetProfitPaid)
	// Negative shares clamp to zero, no partner owes the business.
	for _, p := range snap.Partners {
		assert.Equal(t, 0.0, p.BaseShare)
	}
}

func TestCalcInventoryDefaultsToCashWhenNoNetSource(t *testing.T) {
	// Both channels fully consumed: net source is zero everywhere, the
	// split falls back to 100% cash.
	bankIn := mkEntry(TypeIncomeSession, 100, DirectionIn, ChannelBank)
	bankIn.AccountID = "bca"
	bankOut := mkEntry(TypeExpenseOperational, 100, DirectionOut, ChannelBank)
	bankOut.AccountID = "bca"
	entries := []Entry{
		mkEntry(TypeIncomeSession, 100, DirectionIn, ChannelCash),
		mkEntry(TypeExpenseOperational, 100, DirectionOut, ChannelCash),
		mkEntry(TypeDebtCreate, 400, DirectionIn, ChannelReceivable),
	}
	entries = append(entries, bankIn, bankOut)

	snap := CalcInventory(entries, "2024-05-01", "2024-05-31", testPartners, PricingConfig{})
	// Invoice 600, expenses 200, no dev percent: 400 distributable.
	assert.Equal(t, 400.0, snap.NetProfitPaid)
	first := snap.Partners[0]
	assert.InDelta(t, first.BaseShare, first.CashShareAvailable, 0.001)
	assert.Equal(t, 0.0, first.BankShareAvailable)
}

func TestCalcInventoryNetsWindowWithdrawals(t *testing.T) {
	draw := mkEntry(TypePartnerWithdrawal, 50, DirectionOut, ChannelCash)
	draw.PartnerID = "p1"
	repay := mkEntry(TypePartnerDeposit, 20, DirectionIn, ChannelCash)
	repay.PartnerID = "p1"
	outside := mkEntry(TypePartnerWithdrawal, 999, DirectionOut, ChannelCash)
	outside.PartnerID = "p1"
	outside.DateKey = "2024-04-01"

	entries := append(monthEntries(), draw, repay, outside)
	snap := CalcInventory(entries, "2024-05-01", "2024-05-31", testPartners, PricingConfig{DevPercent: 15})

	first := snap.Partners[0]
	assert.Equal(t, "p1", first.PartnerID)
	assert.InDelta(t, 30.0, first.NetWithdrawal, 0.001)
	assert.InDelta(t, first.BaseShare-30, first.FinalPayoutTotal, 0.001)
	assert.InDelta(t, first.CashShareAvailable-50+20, first.FinalPayoutCash, 0.001)
	assert.InDelta(t, first.BankShareAvailable, first.FinalPayoutBank, 0.001)
}

func TestCalcEndDayPreviewUsesTimestampWindow(t *testing.T) {
	loc := time.UTC
	cycleStart := time.Date(2024, 5, 10, 17, 0, 0, 0, loc)
	now := time.Date(2024, 5, 11, 2, 0, 0, 0, loc)

	inWindow := mkEntry(TypeIncomeSession, 100, DirectionIn, ChannelCash)
	inWindow.Timestamp = time.Date(2024, 5, 10, 22, 0, 0, 0, loc)
	inWindow.EntityID = "sess-1"
	sameSession := mkEntry(TypeIncomeSession, 40, DirectionIn, ChannelCash)
	sameSession.Timestamp = time.Date(2024, 5, 10, 23, 0, 0, 0, loc)
	sameSession.EntityID = "sess-1"
	otherSession := mkEntry(TypeIncomeSession, 60, DirectionIn, ChannelBank)
	otherSession.Timestamp = time.Date(2024, 5, 11, 1, 0, 0, 0, loc)
	otherSession.AccountID = "bca"
	otherSession.EntityID = "sess-2"
	cost := mkEntry(TypeExpenseOperational, 30, DirectionOut, ChannelCash)
	cost.Timestamp = time.Date(2024, 5, 10, 20, 0, 0, 0, loc)
	debt := mkEntry(TypeDebtCreate, 25, DirectionIn, ChannelReceivable)
	debt.Timestamp = time.Date(2024, 5, 10, 21, 0, 0, 0, loc)
	before := mkEntry(TypeIncomeSession, 999, DirectionIn, ChannelCash)
	before.Timestamp = time.Date(2024, 5, 10, 10, 0, 0, 0, loc)
	before.EntityID = "sess-0"

	entries := []Entry{inWindow, sameSession, otherSession, cost, debt, before}
	preview := CalcEndDayPreview(entries, cycleStart, now, loc)

	assert.Equal(t, "2024-05-10", preview.DateKey)
	assert.Equal(t, "2024-05", preview.MonthKey)
	assert.Equal(t, 200.0, preview.TotalRevenue)
	assert.Equal(t, 140.0, preview.CashRevenue)
	assert.Equal(t, 60.0, preview.BankRevenue)
	assert.Equal(t, 25.0, preview.TotalDebt)
	assert.Equal(t, 225.0, preview.TotalInvoice)
	assert.Equal(t, 30.0, preview.TotalCosts)
	assert.Equal(t, 110.0, preview.NetCashFlow)
	assert.Equal(t, 60.0, preview.NetBankFlow)
	assert.Equal(t, 170.0, preview.GrossProfit)
	assert.Equal(t, 2, preview.RecordCount)
}
