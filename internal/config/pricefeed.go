package config

import "time"

// PriceFeed: внешний HTTP-источник рыночных цен. Пустой URL отключает источник.
type PriceFeed struct {
	URL     string        `env:"PRICE_FEED_URL"`
	Token   string        `env:"PRICE_FEED_TOKEN" json:"-"`
	Timeout time.Duration `env:"PRICE_FEED_TIMEOUT" envDefault:"10s"`
}

func (p PriceFeed) Enabled() bool {
	return p.URL != ""
}
