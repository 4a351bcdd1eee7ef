// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import "time"

// Listing Объявление с маркетплейса. Денежные поля передаются строкой
type Listing struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	CardName       string   `json:"cardName" validate:"required"`
	SetName        string   `json:"setName"`
	RawPrice       string   `json:"rawPrice" validate:"required"`
	ConditionNotes string   `json:"conditionNotes"`
	SellerRating   *float64 `json:"sellerRating,omitempty" validate:"omitempty,gte=0,lte=100"`

	// GradingLabel Оценка слэба, например "PSA 10" или "BGS Black Label"
	GradingLabel string `json:"gradingLabel,omitempty"`
	URL          string `json:"url" validate:"omitempty,url"`
}

type EvaluateBatchRequest struct {
	Listings []Listing `json:"listings" validate:"required,min=1,max=500,dive"`
}

type Assessment struct {
	Condition      string   `json:"condition"`
	Confidence     float64  `json:"confidence"`
	Multiplier     float64  `json:"multiplier"`
	GradingCompany string   `json:"gradingCompany,omitempty"`
	Grade          string   `json:"grade,omitempty"`
	Notes          []string `json:"notes"`
}

type Reason struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type StatusChange struct {
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	Notes      string    `json:"notes,omitempty"`
	Operator   string    `json:"operator,omitempty"`
	OutOfOrder bool      `json:"outOfOrder,omitempty"`
	ChangedAt  time.Time `json:"changedAt"`
}

type Deal struct {
	ID               string         `json:"id"`
	Listing          Listing        `json:"listing"`
	Assessment       Assessment     `json:"assessment"`
	ExpectedValue    string         `json:"expectedValue"`
	ROI              float64        `json:"roi"`
	ProfitMargin     float64        `json:"profitMargin"`
	ReprintRisk      float64        `json:"reprintRisk"`
	Recommendation   string         `json:"recommendation"`
	Confidence       float64        `json:"confidence"`
	Reason           Reason         `json:"reason"`
	InvestmentAmount string         `json:"investmentAmount"`
	Status           string         `json:"status,omitempty"`
	StatusHistory    []StatusChange `json:"statusHistory,omitempty"`
	Grade            string         `json:"grade,omitempty"`
	CertNumber       string         `json:"certNumber,omitempty"`
	GradedValue      string         `json:"gradedValue,omitempty"`
	SalePrice        string         `json:"salePrice,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type Deals struct {
	Deals []Deal `json:"deals"`
}

// Admission Решение шлюза капитала
type Admission struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
	Amount  string `json:"amount"`
	DealID  string `json:"dealId,omitempty"`
}

type Evaluation struct {
	Deal      Deal       `json:"deal"`
	Filtered  bool       `json:"filtered"`
	Tracked   bool       `json:"tracked"`
	Duplicate bool       `json:"duplicate"`
	Admission *Admission `json:"admission,omitempty"`
}

type BatchItem struct {
	Index      int         `json:"index"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Evaluated int         `json:"evaluated"`
	Failed    int         `json:"failed"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// StatusUpdateRequest Смена статуса сделки. Для GRADED обязательны grade, certNumber и estimatedValue
type StatusUpdateRequest struct {
	Status         string `json:"status" validate:"required"`
	Grade          string `json:"grade"`
	GradingCompany string `json:"gradingCompany"`
	CertNumber     string `json:"certNumber"`
	EstimatedValue string `json:"estimatedValue"`
	SalePrice      string `json:"salePrice"`
	Notes          string `json:"notes"`
	Location       string `json:"location"`
}

type CapitalStatus struct {
	TotalAvailable       string  `json:"totalAvailable"`
	ActiveExposure       string  `json:"activeExposure"`
	PendingExposure      string  `json:"pendingExposure"`
	ReserveCash          string  `json:"reserveCash"`
	AvailableForNewDeals string  `json:"availableForNewDeals"`
	MaxTotalExposure     string  `json:"maxTotalExposure"`
	PerDealLimit         string  `json:"perDealLimit"`
	ActiveDealCount      int     `json:"activeDealCount"`
	PendingDealCount     int     `json:"pendingDealCount"`
	MaxConcurrent        int     `json:"maxConcurrent"`
	UtilizationPct       float64 `json:"utilizationPct"`
}

type CapitalCheck struct {
	Amount  string `json:"amount"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

type CapitalLimitsRequest struct {
	TotalAvailable string `json:"totalAvailable" validate:"required"`
}

type CapitalLimits struct {
	TotalAvailable     string  `json:"totalAvailable"`
	MaxTotalExposure   string  `json:"maxTotalExposure"`
	PerDealLimit       string  `json:"perDealLimit"`
	ReserveCash        string  `json:"reserveCash"`
	MaxConcurrentDeals int     `json:"maxConcurrentDeals"`
	MaxPositionPercent float64 `json:"maxPositionPercent"`
}

type VaultPosition struct {
	DealID         string    `json:"dealId"`
	CardName       string    `json:"cardName"`
	SetName        string    `json:"setName"`
	AssetClass     string    `json:"assetClass"`
	GradingStatus  string    `json:"gradingStatus"`
	Condition      string    `json:"condition,omitempty"`
	GradingCompany string    `json:"gradingCompany,omitempty"`
	Grade          string    `json:"grade,omitempty"`
	CertNumber     string    `json:"certNumber,omitempty"`
	PurchasePrice  string    `json:"purchasePrice"`
	EstimatedValue string    `json:"estimatedValue"`
	DateReceived   time.Time `json:"dateReceived"`
	HoldUntil      time.Time `json:"holdUntil"`
	Location       string    `json:"location"`
}

// VaultPositionRequest Приём карты в хранилище вне конвейера оценки. Без grade позиция считается сырой
type VaultPositionRequest struct {
	DealID         string `json:"dealId"`
	CardName       string `json:"cardName" validate:"required"`
	SetName        string `json:"setName"`
	AssetClass     string `json:"assetClass"`
	Condition      string `json:"condition"`
	GradingCompany string `json:"gradingCompany"`
	Grade          string `json:"grade"`
	CertNumber     string `json:"certNumber"`
	PurchasePrice  string `json:"purchasePrice" validate:"required"`
	EstimatedValue string `json:"estimatedValue"`
	Location       string `json:"location"`
}

type VaultSummary struct {
	TotalPositions  int     `json:"totalPositions"`
	CostBasis       string  `json:"costBasis"`
	CurrentValue    string  `json:"currentValue"`
	UnrealizedGains string  `json:"unrealizedGains"`
	ROIPercentage   float64 `json:"roiPercentage"`
	InsuranceValue  string  `json:"insuranceValue"`
}

type GradingOpportunity struct {
	DealID        string  `json:"dealId"`
	CardName      string  `json:"cardName"`
	CurrentValue  string  `json:"currentValue"`
	GradingCost   string  `json:"gradingCost"`
	ExpectedValue string  `json:"expectedValue"`
	ExpectedROI   float64 `json:"expectedRoi"`
}

type GradingOpportunities struct {
	Opportunities []GradingOpportunity `json:"opportunities"`
}

type VaultReport struct {
	Summary              VaultSummary         `json:"summary"`
	Allocation           map[string]float64   `json:"allocation"`
	Positions            []VaultPosition      `json:"positions"`
	GradingOpportunities []GradingOpportunity `json:"gradingOpportunities"`
	GeneratedAt          time.Time            `json:"generatedAt"`
}

type ReadySale struct {
	Position       VaultPosition `json:"position"`
	SuggestedPrice string        `json:"suggestedPrice"`
	DaysHeld       int           `json:"daysHeld"`
}

type ReadySales struct {
	Positions []ReadySale `json:"positions"`
}

// RebalanceRequest Целевая аллокация в процентах по классам активов
type RebalanceRequest struct {
	Target map[string]float64 `json:"target" validate:"required,min=1,dive,gte=0,lte=100"`
}

type RebalanceSuggestion struct {
	AssetClass string  `json:"assetClass"`
	Current    float64 `json:"currentAllocation"`
	Target     float64 `json:"targetAllocation"`
	Difference float64 `json:"difference"`
	Action     string  `json:"action"`
	Amount     string  `json:"amount"`
}

type RebalanceSuggestions struct {
	Suggestions []RebalanceSuggestion `json:"suggestions"`
}

type CatalogEntry struct {
	CardName  string `json:"cardName"`
	SetName   string `json:"setName"`
	BasePrice string `json:"basePrice"`
	Priority  string `json:"priority,omitempty"`
	Tier      string `json:"tier,omitempty"`
}

type CatalogEntries struct {
	Entries []CatalogEntry `json:"entries"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
