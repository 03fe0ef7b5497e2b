package ledger

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyFixture() LegacyData {
	return LegacyData{
		Records: []LegacySessionRecord{
			{
				ID: "rec-1", CustomerName: "Walk-in",
				EndTime:  time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC),
				CashPaid: 50000, BankPaid: 25000, RemainingDebt: 10000,
				BankAccountID: "bca",
			},
			{
				ID: "rec-2", CustomerName: "Regular",
				EndTime:  time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC),
				CashPaid: 30000,
			},
		},
		Expenses: []LegacyExpense{
			{ID: "exp-1", Name: "Coffee supplies", Amount: 15000, Kind: "other", Date: "2024-03-03"},
			{ID: "exp-2", Name: "Electricity token", Amount: 20000, Kind: "electricity", Date: "2024-03-04"},
			{ID: "exp-3", Name: "Loan installment", Amount: 100000, Kind: "loan_repayment", Date: "2024-03-06"},
		},
		Purchases: []LegacyPurchase{
			{ID: "pur-1", Name: "Snack stock", Amount: 40000, Date: "2024-03-01"},
		},
		Debts: []LegacyDebtItem{
			{ID: "debt-1", PartnerID: "p1", Amount: 25000, Date: "2024-03-03", Note: "personal"},
			{ID: "debt-2", PartnerID: "p1", Amount: -10000, Date: "2024-03-05", Note: "payback"},
		},
		Transfers: []LegacyCashTransfer{
			{ID: "tr-1", PartnerID: "p2", Amount: 50000, Date: "2024-03-04", TargetAccountID: "bca"},
		},
		Loans: []LegacyLoan{
			{ID: "loan-1", Principal: 500000},
		},
	}
}

func TestMigrateLegacyConvertsEverySource(t *testing.T) {
	f := fixedFactory(t)
	entries, err := MigrateLegacy(legacyFixture(), testPartners, f)
	require.NoError(t, err)

	// rec-1 splits into three entries, rec-2 into one; 3 expenses, 1
	// purchase, 2 partner movements, 1 balanced transfer pair. Loan
	// principals produce nothing.
	require.Len(t, entries, 12)
	for _, e := range entries {
		assert.True(t, e.Migrated, "entry %s should be flagged migrated", e.ID)
	}

	byType := make(map[TransactionType]int)
	for _, e := range entries {
		byType[e.Type]++
	}
	assert.Equal(t, 3, byType[TypeIncomeSession])
	assert.Equal(t, 1, byType[TypeDebtCreate])
	assert.Equal(t, 1, byType[TypeExpenseOperational])
	assert.Equal(t, 1, byType[TypeExpenseElectricity])
	assert.Equal(t, 1, byType[TypeLoanRepayment])
	assert.Equal(t, 1, byType[TypeExpensePurchase])
	assert.Equal(t, 1, byType[TypePartnerWithdrawal])
	assert.Equal(t, 1, byType[TypePartnerDeposit])
	assert.Equal(t, 2, byType[TypeLiquidationToApp])
}

func TestMigrateLegacySortsAscendingByTimestamp(t *testing.T) {
	f := fixedFactory(t)
	entries, err := MigrateLegacy(legacyFixture(), testPartners, f)
	require.NoError(t, err)

	sorted := sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	assert.True(t, sorted, "migrated entries must be ordered oldest first")
	// The purchase on 03-01 predates everything else.
	assert.Equal(t, TypeExpensePurchase, entries[0].Type)
}

func TestMigrateLegacyReproducesLegacyTotals(t *testing.T) {
	f := fixedFactory(t)
	entries, err := MigrateLegacy(legacyFixture(), testPartners, f)
	require.NoError(t, err)

	// cash: 50000+30000 income − 15000 − 20000 − 100000 expenses − 40000
	// purchase − 25000 withdrawal + 10000 repayment − 50000 transfer out.
	assert.InDelta(t, -160000.0, Balance(entries, ChannelCash), 0.001)
	// bank: 25000 session + 50000 transfer in.
	assert.InDelta(t, 75000.0, Balance(entries, ChannelBank), 0.001)
	assert.InDelta(t, 10000.0, Balance(entries, ChannelReceivable), 0.001)
}

func TestMigrateLegacyNegativeDebtBecomesDeposit(t *testing.T) {
	f := fixedFactory(t)
	entries, err := MigrateLegacy(LegacyData{
		Debts: []LegacyDebtItem{{ID: "d1", PartnerID: "p1", Amount: -5000, Date: "2024-03-01", Note: "refund"}},
	}, testPartners, f)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, TypePartnerDeposit, e.Type)
	assert.Equal(t, DirectionIn, e.Direction)
	assert.Equal(t, 5000.0, e.Amount)
	assert.Equal(t, "Ani", e.PartnerName)
}

func TestMigrateLegacyTransferPairSharesReference(t *testing.T) {
	f := fixedFactory(t)
	entries, err := MigrateLegacy(LegacyData{
		Transfers: []LegacyCashTransfer{{ID: "tr-1", PartnerID: "p2", Amount: 7000, Date: "2024-03-01", TargetAccountID: "dana"}},
	}, testPartners, f)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, entries[0].ReferenceID, entries[1].ReferenceID)
	assert.NotEmpty(t, entries[0].ReferenceID)
	assert.Equal(t, ChannelCash, entries[0].Channel)
	assert.Equal(t, DirectionOut, entries[0].Direction)
	assert.Equal(t, ChannelBank, entries[1].Channel)
	assert.Equal(t, DirectionIn, entries[1].Direction)
	assert.Equal(t, "dana", entries[1].AccountID)
}
