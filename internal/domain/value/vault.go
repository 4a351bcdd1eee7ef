package value

type GradingStatus string

const (
	GradingStatusRaw    GradingStatus = "raw"
	GradingStatusGraded GradingStatus = "graded"
)

// AssetClass: группа позиций в хранилище для расчёта аллокации.
type AssetClass string

const (
	AssetClassGradedCards AssetClass = "graded_cards"
	AssetClassRawCards    AssetClass = "raw_cards"
	AssetClassSealed      AssetClass = "sealed_product"
)

func (a AssetClass) String() string {
	return string(a)
}

func (a AssetClass) IsValid() bool {
	switch a {
	case AssetClassGradedCards, AssetClassRawCards, AssetClassSealed:
		return true
	default:
		return false
	}
}
