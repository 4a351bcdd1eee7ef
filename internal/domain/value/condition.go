package value

import (
	"fmt"
	"strings"
)

// Condition описывает состояние карты, одну из ступеней сырой карты или Graded.
type Condition string

const (
	ConditionNearMintMint  Condition = "Near Mint/Mint"
	ConditionNearMint      Condition = "Near Mint"
	ConditionExcellent     Condition = "Excellent"
	ConditionLightlyPlayed Condition = "Lightly Played"
	ConditionGood          Condition = "Good"
	ConditionPlayed        Condition = "Played"
	ConditionPoor          Condition = "Poor"
	ConditionGraded        Condition = "Graded"
)

type conditionInfo struct {
	multiplier float64
	rank       int
}

//nolint:gochecknoglobals
var conditions = map[Condition]conditionInfo{
	ConditionNearMintMint:  {multiplier: 1.00, rank: 7},
	ConditionNearMint:      {multiplier: 0.90, rank: 6},
	ConditionExcellent:     {multiplier: 0.75, rank: 5},
	ConditionLightlyPlayed: {multiplier: 0.65, rank: 4},
	ConditionGood:          {multiplier: 0.50, rank: 3},
	ConditionPlayed:        {multiplier: 0.40, rank: 2},
	ConditionPoor:          {multiplier: 0.25, rank: 1},
}

func (c Condition) String() string {
	return string(c)
}

// Multiplier: множитель цены из фиксированной таблицы; для Graded и неизвестных значений 1.
func (c Condition) Multiplier() float64 {
	info, ok := conditions[c]
	if !ok {
		return 1
	}

	return info.multiplier
}

// Rank упорядочивает сырые состояния: чем выше, тем лучше. Graded и неизвестные получают 0.
func (c Condition) Rank() int {
	return conditions[c].rank
}

func (c Condition) IsRaw() bool {
	_, ok := conditions[c]
	return ok
}

// Below сообщает, что состояние c хуже other.
func (c Condition) Below(other Condition) bool {
	return c.Rank() < other.Rank()
}

func ParseCondition(s string) (Condition, error) {
	normalized := strings.TrimSpace(s)

	for c := range conditions {
		if strings.EqualFold(c.String(), normalized) {
			return c, nil
		}
	}

	if strings.EqualFold(ConditionGraded.String(), normalized) {
		return ConditionGraded, nil
	}

	return "", fmt.Errorf("unknown condition %q", s)
}
