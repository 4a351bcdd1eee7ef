package connectors

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"github.com/samber/lo"

	"card_arbitrage/pkg/logx"
)

// SQLite: локальное хранилище для разработки и одиночного запуска.
type SQLite struct {
	value *sqlx.DB
	Path  string
	init  sync.Once
}

func (s *SQLite) Client(ctx context.Context) *sqlx.DB {
	s.init.Do(func() {
		s.value = lo.Must(sqlx.ConnectContext(ctx, "sqlite3", s.Path+"?_foreign_keys=on&_busy_timeout=5000"))

		// sqlite не поддерживает параллельную запись
		s.value.SetMaxOpenConns(1)

		logger(ctx).Info("sqlite connected", slog.String("path", s.Path))
	})

	return s.value
}

func (s *SQLite) Close(ctx context.Context) {
	if err := s.value.Close(); err != nil {
		logger(ctx).Error("sqliteClient.Close", logx.Error(err))
	}

	logger(ctx).Info("sqlite disconnected", slog.String("path", s.Path))
}
