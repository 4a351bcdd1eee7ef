package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/pkg/httpx"
	"card_arbitrage/pkg/logx"
)

const (
	logFieldMaxLen = 2048
	maxBodySize    = 8 << 20
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

var ErrTokenRejected = errors.New("price feed rejected the token")

type quote struct {
	CardName string          `json:"cardName"`
	SetName  string          `json:"setName"`
	Price    decimal.Decimal `json:"price"`
}

type document struct {
	Prices []quote `json:"prices"`
}

// Feed читает рыночные цены из JSON-документа вида {"prices": [...]} по HTTP.
type Feed struct {
	client *http.Client
	url    string
}

// New собирает клиент фида. Пустой токен отключает заголовок Authorization.
func New(url, token string, timeout time.Duration) *Feed {
	next := http.DefaultTransport
	if token != "" {
		next = httpx.NewAuthBearerRoundTripper(next, staticToken(token))
	}

	transport := httpx.NewLoggingRoundTripper(
		next,
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
		httpx.WithLogFieldMaxLen(logFieldMaxLen),
	)

	return &Feed{
		client: &http.Client{Transport: transport, Timeout: timeout},
		url:    url,
	}
}

// Load возвращает цены по ключам каталога. Неположительные цены пропускаются.
func (f *Feed) Load(ctx context.Context) (map[catalog.Key]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	prices := make(map[catalog.Key]decimal.Decimal, len(doc.Prices))

	for _, q := range doc.Prices {
		if q.CardName == "" || !q.Price.IsPositive() {
			continue
		}

		prices[catalog.NewKey(q.CardName, q.SetName)] = q.Price
	}

	return prices, nil
}

// staticToken: постоянный токен. Повторная аутентификация невозможна.
type staticToken string

func (t staticToken) BearerToken() string {
	return string(t)
}

func (t staticToken) Authenticate(context.Context) error {
	return ErrTokenRejected
}
