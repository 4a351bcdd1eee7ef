package persistence

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
)

// ApplySchema выполняет SQL-файл схемы целиком. Схема должна быть идемпотентной.
func ApplySchema(ctx context.Context, db *sqlx.DB, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("os.ReadFile: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(b)); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}
