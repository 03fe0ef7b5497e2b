package ledger

// Request payloads for the JSON API. Validation tags cover shape only;
// business rules (funds, period lock, enum membership) stay in the core.

type incomeRequest struct {
	Type        string  `json:"type" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Channel     string  `json:"channel" validate:"required,oneof=cash bank"`
	AccountID   string  `json:"accountId" validate:"required_if=Channel bank"`
	Description string  `json:"description"`
	EntityID    string  `json:"entityId"`
	DateKey     string  `json:"dateKey"`
	Actor       string  `json:"actor"`
}

type expenseRequest struct {
	Type        string  `json:"type" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Channel     string  `json:"channel" validate:"required,oneof=cash bank"`
	AccountID   string  `json:"accountId" validate:"required_if=Channel bank"`
	Description string  `json:"description" validate:"required"`
	EntityID    string  `json:"entityId"`
	DateKey     string  `json:"dateKey"`
	Actor       string  `json:"actor"`
}

type debtRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"required"`
	EntityID    string  `json:"entityId"`
	DateKey     string  `json:"dateKey"`
	Actor       string  `json:"actor"`
}

type debtPaymentRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Outstanding float64 `json:"outstanding" validate:"gte=0"`
	Channel     string  `json:"channel" validate:"required,oneof=cash bank"`
	AccountID   string  `json:"accountId" validate:"required_if=Channel bank"`
	EntityID    string  `json:"entityId"`
	DateKey     string  `json:"dateKey"`
	Actor       string  `json:"actor"`
}

type partnerDrawRequest struct {
	PartnerID string  `json:"partnerId" validate:"required"`
	Kind      string  `json:"kind" validate:"required,oneof=withdrawal deposit debt_payment"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	Channel   string  `json:"channel" validate:"required,oneof=cash bank"`
	AccountID string  `json:"accountId" validate:"required_if=Channel bank"`
	Note      string  `json:"note"`
	DateKey   string  `json:"dateKey"`
}

type liquidationRequest struct {
	PartnerID       string  `json:"partnerId" validate:"required"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	TargetAccountID string  `json:"targetAccountId" validate:"required"`
	EntityID        string  `json:"entityId"`
	DateKey         string  `json:"dateKey"`
}

type openingBalanceRequest struct {
	Amount      float64 `json:"amount" validate:"gte=0"`
	Channel     string  `json:"channel" validate:"required,oneof=cash bank"`
	AccountID   string  `json:"accountId" validate:"required_if=Channel bank"`
	Description string  `json:"description" validate:"required"`
	DateKey     string  `json:"dateKey"`
	Actor       string  `json:"actor"`
}

type archiveRequest struct {
	Start               string  `json:"start" validate:"required"`
	End                 string  `json:"end" validate:"required"`
	CurrentMeterReading float64 `json:"currentMeterReading" validate:"gte=0"`
	Notes               string  `json:"notes"`
	Actor               string  `json:"actor"`
}

type migrationRequest struct {
	Records   []LegacySessionRecord `json:"records"`
	Expenses  []LegacyExpense       `json:"expenses"`
	Purchases []LegacyPurchase      `json:"purchases"`
	Transfers []LegacyCashTransfer  `json:"transfers"`
	Debts     []LegacyDebtItem      `json:"debts"`
	Loans     []LegacyLoan          `json:"loans"`
	Actor     string                `json:"actor"`
}

type balanceResponse struct {
	Channel   string  `json:"channel"`
	AccountID string  `json:"accountId,omitempty"`
	Balance   float64 `json:"balance"`
}

type integrityResponse struct {
	Problems []string `json:"problems"`
	Healthy  bool     `json:"healthy"`
}

type entriesResponse struct {
	Entries []Entry `json:"entries"`
	Count   int     `json:"count"`
}

type migrationResponse struct {
	Imported int `json:"imported"`
}
