package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/pkg/errcodes"
)

type VaultRepository struct {
	db *sqlx.DB
}

func NewVaultRepository(db *sqlx.DB) *VaultRepository {
	return &VaultRepository{db: db}
}

// Save добавляет позицию или обновляет существующую.
func (r *VaultRepository) Save(ctx context.Context, position entity.VaultPosition) error {
	query := `
		INSERT INTO vault_positions (
			deal_id, card_name, set_name, asset_class, grading_status, condition,
			grading_company, grade, cert_number, purchase_price, estimated_value,
			date_received, hold_until, location
		) VALUES (
			:deal_id, :card_name, :set_name, :asset_class, :grading_status, :condition,
			:grading_company, :grade, :cert_number, :purchase_price, :estimated_value,
			:date_received, :hold_until, :location
		)
		ON CONFLICT (deal_id) DO UPDATE SET
			card_name = excluded.card_name,
			set_name = excluded.set_name,
			asset_class = excluded.asset_class,
			grading_status = excluded.grading_status,
			condition = excluded.condition,
			grading_company = excluded.grading_company,
			grade = excluded.grade,
			cert_number = excluded.cert_number,
			purchase_price = excluded.purchase_price,
			estimated_value = excluded.estimated_value,
			date_received = excluded.date_received,
			hold_until = excluded.hold_until,
			location = excluded.location`

	if _, err := r.db.NamedExecContext(ctx, query, fromPosition(position)); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to save vault position")
	}

	return nil
}

// Delete удаляет позицию; отсутствие позиции не считается ошибкой.
func (r *VaultRepository) Delete(ctx context.Context, dealID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM vault_positions WHERE deal_id = ?`), dealID); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to delete vault position")
	}

	return nil
}

func (r *VaultRepository) List(ctx context.Context) ([]entity.VaultPosition, error) {
	query := `
		SELECT deal_id, card_name, set_name, asset_class, grading_status, condition,
			grading_company, grade, cert_number, purchase_price, estimated_value,
			date_received, hold_until, location
		FROM vault_positions
		ORDER BY date_received, deal_id`

	var schemas []positionSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list vault positions")
	}

	positions := make([]entity.VaultPosition, 0, len(schemas))
	for i := range schemas {
		positions = append(positions, schemas[i].toDomain())
	}

	return positions, nil
}
