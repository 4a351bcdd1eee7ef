package pricecache

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/service/catalog"
)

const (
	DefaultKey     = "card_arbitrage:market_prices"
	fieldSeparator = "|"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type quote struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// MarketPrices: рыночные цены карт в Redis-хеше. Поле хеша, "карта|сет" в нижнем регистре.
// Цены подмешиваются в каталог при его обновлении; во время оценки лота Redis не читается.
type MarketPrices struct {
	client redis.Cmdable
	key    string
	maxAge time.Duration
	now    func() time.Time
}

func NewMarketPrices(client redis.Cmdable, key string, maxAge time.Duration) *MarketPrices {
	if key == "" {
		key = DefaultKey
	}

	return &MarketPrices{
		client: client,
		key:    key,
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (m *MarketPrices) Set(ctx context.Context, cardName, setName string, price decimal.Decimal) error {
	payload, err := json.MarshalToString(quote{Price: price, UpdatedAt: m.now().UTC()})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := m.client.HSet(ctx, m.key, Field(catalog.NewKey(cardName, setName)), payload).Err(); err != nil {
		return fmt.Errorf("redis.HSet: %w", err)
	}

	return nil
}

// Load возвращает все свежие цены. Устаревшие и повреждённые записи пропускаются.
func (m *MarketPrices) Load(ctx context.Context) (map[catalog.Key]decimal.Decimal, error) {
	raw, err := m.client.HGetAll(ctx, m.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis.HGetAll: %w", err)
	}

	now := m.now()
	result := make(map[catalog.Key]decimal.Decimal, len(raw))

	for field, payload := range raw {
		key, ok := ParseField(field)
		if !ok {
			logger(ctx).Warn("skipping malformed price field", "field", field)
			continue
		}

		var q quote
		if err := json.UnmarshalFromString(payload, &q); err != nil {
			logger(ctx).Warn("skipping malformed price", "field", field, "error", err)
			continue
		}

		if m.maxAge > 0 && now.Sub(q.UpdatedAt) > m.maxAge {
			continue
		}

		result[key] = q.Price
	}

	return result, nil
}

// Field кодирует ключ каталога в поле хеша.
func Field(key catalog.Key) string {
	return key.CardName + fieldSeparator + key.SetName
}

func ParseField(field string) (catalog.Key, bool) {
	card, set, ok := strings.Cut(field, fieldSeparator)
	if !ok || card == "" {
		return catalog.Key{}, false
	}

	return catalog.NewKey(card, set), true
}
