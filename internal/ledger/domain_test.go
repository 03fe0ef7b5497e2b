package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionTypeClassification(t *testing.T) {
	incomes := []TransactionType{TypeIncomeSession, TypeIncomeProduct, TypeDebtPayment}
	for _, typ := range incomes {
		assert.True(t, typ.IsIncome(), "%s should be income", typ)
		assert.False(t, typ.IsExpense(), "%s should not be expense", typ)
	}

	expenses := []TransactionType{TypeExpenseOperational, TypeExpensePurchase, TypeExpenseElectricity, TypeLoanRepayment}
	for _, typ := range expenses {
		assert.True(t, typ.IsExpense(), "%s should be expense", typ)
		assert.False(t, typ.IsIncome(), "%s should not be income", typ)
	}

	// Receivable tracking and internal movements count as neither.
	neutral := []TransactionType{TypeDebtCreate, TypePartnerWithdrawal, TypePartnerDeposit,
		TypePartnerDebtPayment, TypeLiquidationToApp, TypeInternalTransfer, TypeOpeningBalance}
	for _, typ := range neutral {
		assert.False(t, typ.IsIncome(), "%s should not be income", typ)
		assert.False(t, typ.IsExpense(), "%s should not be expense", typ)
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TypeIncomeSession.Valid())
	assert.False(t, TransactionType("BOGUS").Valid())
	assert.True(t, ChannelReceivable.Valid())
	assert.False(t, Channel("wallet").Valid())
	assert.True(t, DirectionOut.Valid())
	assert.False(t, Direction("sideways").Valid())
}

func TestValidatePartners(t *testing.T) {
	good := []Partner{
		{ID: "p1", Name: "Ani", Percent: 34},
		{ID: "p2", Name: "Budi", Percent: 33},
		{ID: "p3", Name: "Citra", Percent: 33},
	}
	require.NoError(t, ValidatePartners(good))

	assert.Error(t, ValidatePartners(nil))
	assert.Error(t, ValidatePartners([]Partner{{ID: "p1", Name: "Ani", Percent: 99}}))
	assert.Error(t, ValidatePartners([]Partner{
		{ID: "p1", Name: "Ani", Percent: 50},
		{ID: "p1", Name: "Budi", Percent: 50},
	}))
	assert.Error(t, ValidatePartners([]Partner{
		{ID: "p1", Name: "Ani", Percent: 100},
		{ID: "p2", Name: "Budi", Percent: -0},
	}))

	// Rounding noise within a hundredth of a percent is fine.
	almost := []Partner{
		{ID: "p1", Name: "Ani", Percent: 33.335},
		{ID: "p2", Name: "Budi", Percent: 33.33},
		{ID: "p3", Name: "Citra", Percent: 33.33},
	}
	require.NoError(t, ValidatePartners(almost))
}
