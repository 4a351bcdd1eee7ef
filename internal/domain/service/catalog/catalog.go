package catalog

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// Key: регистронезависимый ключ карты в каталоге.
type Key struct {
	CardName string
	SetName  string
}

func NewKey(cardName, setName string) Key {
	return Key{
		CardName: strings.ToLower(strings.TrimSpace(cardName)),
		SetName:  strings.ToLower(strings.TrimSpace(setName)),
	}
}

// Catalog: неизменяемый снимок базовых цен. Безопасен для конкурентного чтения.
type Catalog struct {
	entries []entity.CatalogEntry
	byName  map[string][]int
}

type document struct {
	Cards []entity.CatalogEntry `json:"cards"`
}

func New(entries []entity.CatalogEntry) *Catalog {
	c := &Catalog{
		entries: make([]entity.CatalogEntry, 0, len(entries)),
		byName:  make(map[string][]int, len(entries)),
	}

	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.CardName))
		c.byName[name] = append(c.byName[name], len(c.entries))
		c.entries = append(c.entries, e)
	}

	return c
}

// LoadFile читает каталог из JSON-файла вида {"cards": [...]}.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, domain.WrapError(err, errcodes.InvalidCatalog, "malformed catalog document")
	}

	for i, e := range doc.Cards {
		if strings.TrimSpace(e.CardName) == "" {
			return nil, domain.NewError(errcodes.InvalidCatalog, fmt.Sprintf("card %d: empty name", i))
		}

		if !e.BasePrice.IsPositive() {
			return nil, domain.NewError(errcodes.InvalidCatalog,
				fmt.Sprintf("card %d (%s): base price must be positive", i, e.CardName))
		}
	}

	return New(doc.Cards), nil
}

// GetBasePrice ищет карту по имени; точный сет важнее подстановочного "Various Sets".
func (c *Catalog) GetBasePrice(cardName, setName string) (entity.CatalogEntry, bool) {
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(cardName))]
	if !ok {
		return entity.CatalogEntry{}, false
	}

	set := strings.TrimSpace(setName)

	for _, i := range idx {
		if strings.EqualFold(c.entries[i].SetName, set) {
			return c.entries[i], true
		}
	}

	for _, i := range idx {
		if strings.EqualFold(c.entries[i].SetName, entity.WildcardSet) {
			return c.entries[i], true
		}
	}

	return entity.CatalogEntry{}, false
}

// EstimatePrice применяет ровно один множитель: оценки, если она передана, иначе состояния.
// Пустое состояние считается Near Mint.
func (c *Catalog) EstimatePrice(
	cardName, setName string,
	condition value.Condition,
	grade *value.GradingLabel,
) (decimal.Decimal, bool) {
	entry, ok := c.GetBasePrice(cardName, setName)
	if !ok {
		return decimal.Zero, false
	}

	if grade != nil {
		return PriceAtGrade(entry, *grade), true
	}

	if condition == "" {
		condition = value.ConditionNearMint
	}

	return entry.BasePrice.Mul(decimal.NewFromFloat(condition.Multiplier())).Round(2), true
}

// PriceAtGrade: цена карты в слэбе с данной оценкой.
func PriceAtGrade(entry entity.CatalogEntry, label value.GradingLabel) decimal.Decimal {
	return entry.BasePrice.Mul(decimal.NewFromFloat(label.Multiplier())).Round(2)
}

// CardsInRange возвращает карты с базовой ценой в [minPrice, maxPrice], дорогие первыми.
// Нулевой maxPrice означает отсутствие верхней границы.
func (c *Catalog) CardsInRange(minPrice, maxPrice decimal.Decimal) []entity.CatalogEntry {
	var result []entity.CatalogEntry

	for _, e := range c.entries {
		if e.BasePrice.LessThan(minPrice) {
			continue
		}

		if !maxPrice.IsZero() && e.BasePrice.GreaterThan(maxPrice) {
			continue
		}

		result = append(result, e)
	}

	slices.SortStableFunc(result, func(a, b entity.CatalogEntry) int {
		return cmp.Compare(b.BasePrice.InexactFloat64(), a.BasePrice.InexactFloat64())
	})

	return result
}

// WithPrices возвращает новый снимок, где базовые цены заменены рыночными.
// Неизвестные карты добавляются, исходный каталог не меняется.
func (c *Catalog) WithPrices(prices map[Key]decimal.Decimal) *Catalog {
	entries := slices.Clone(c.entries)
	seen := make(map[Key]struct{}, len(prices))

	for i, e := range entries {
		key := NewKey(e.CardName, e.SetName)
		if price, ok := prices[key]; ok && price.IsPositive() {
			entries[i].BasePrice = price
			seen[key] = struct{}{}
		}
	}

	added := make([]Key, 0, len(prices))
	for key, price := range prices {
		if _, ok := seen[key]; !ok && price.IsPositive() {
			added = append(added, key)
		}
	}

	slices.SortFunc(added, func(a, b Key) int {
		return cmp.Or(strings.Compare(a.CardName, b.CardName), strings.Compare(a.SetName, b.SetName))
	})

	for _, key := range added {
		price := prices[key]

		entries = append(entries, entity.CatalogEntry{
			CardName:  key.CardName,
			SetName:   key.SetName,
			BasePrice: price,
			Notes:     "market price",
		})
	}

	return New(entries)
}

func (c *Catalog) Entries() []entity.CatalogEntry {
	return slices.Clone(c.entries)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}
