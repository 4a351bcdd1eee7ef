package config

import "time"

// Redis используется очередью asynq и кэшем рыночных цен. Пустой адрес отключает оба.
type Redis struct {
	Address        string        `env:"REDIS_ADDRESS"`
	Username       string        `env:"REDIS_USERNAME"`
	Password       string        `env:"REDIS_PASSWORD" json:"-"`
	DatabaseNumber int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize       int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	PriceKey       string        `env:"REDIS_PRICE_KEY" envDefault:"card_arbitrage:market_prices"`
	PriceMaxAge    time.Duration `env:"REDIS_PRICE_MAX_AGE" envDefault:"24h"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}
