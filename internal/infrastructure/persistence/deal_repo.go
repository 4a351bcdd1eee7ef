package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/pkg/errcodes"
)

const dealColumns = `
	id, listing, assessment, expected_value, roi, profit_margin, reprint_risk,
	recommendation, confidence, reason_code, reason_message, investment_amount,
	status, grade, cert_number, graded_value, sale_price, created_at, updated_at`

// DealRepository хранит сделки и журнал их статусов. Запросы пишутся с "?"
// и переводятся в синтаксис драйвера через Rebind, поэтому работают и с Postgres, и с SQLite.
type DealRepository struct {
	db *sqlx.DB
}

func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

// Create сохраняет новую сделку вместе с журналом статусов.
func (r *DealRepository) Create(ctx context.Context, deal entity.Deal) error {
	schema, err := fromDeal(deal)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode deal")
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists bool

		err := tx.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM deals WHERE id = ?)`), deal.ID)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check deal")
		}

		if exists {
			return domain.NewError(errcodes.DealAlreadyTracked, fmt.Sprintf("deal %s already tracked", deal.ID))
		}

		query := `INSERT INTO deals (` + dealColumns + `) VALUES (
			:id, :listing, :assessment, :expected_value, :roi, :profit_margin, :reprint_risk,
			:recommendation, :confidence, :reason_code, :reason_message, :investment_amount,
			:status, :grade, :cert_number, :graded_value, :sale_price, :created_at, :updated_at)`

		if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert deal")
		}

		return r.appendHistoryTx(ctx, tx, deal, 0)
	})
}

// Get возвращает сделку по идентификатору.
func (r *DealRepository) Get(ctx context.Context, id string) (entity.Deal, error) {
	var schema dealSchema

	query := r.db.Rebind(`SELECT ` + dealColumns + ` FROM deals WHERE id = ?`)
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Deal{}, domain.NewError(errcodes.DealNotFound, fmt.Sprintf("deal %s not found", id))
		}

		return entity.Deal{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get deal")
	}

	histories, err := r.histories(ctx, []string{id})
	if err != nil {
		return entity.Deal{}, err
	}

	deal, err := schema.toDomain(histories[id])
	if err != nil {
		return entity.Deal{}, domain.WrapError(err, errcodes.InternalServerError, "failed to decode deal")
	}

	return deal, nil
}

// Update перезаписывает поля сделки и дописывает новые записи журнала.
// Уже сохранённые записи журнала не меняются.
func (r *DealRepository) Update(ctx context.Context, deal entity.Deal) error {
	schema, err := fromDeal(deal)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode deal")
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE deals SET
				listing = :listing, assessment = :assessment, expected_value = :expected_value,
				roi = :roi, profit_margin = :profit_margin, reprint_risk = :reprint_risk,
				recommendation = :recommendation, confidence = :confidence,
				reason_code = :reason_code, reason_message = :reason_message,
				investment_amount = :investment_amount, status = :status, grade = :grade,
				cert_number = :cert_number, graded_value = :graded_value,
				sale_price = :sale_price, updated_at = :updated_at
			WHERE id = :id`

		res, err := tx.NamedExecContext(ctx, query, schema)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to update deal")
		}

		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NewError(errcodes.DealNotFound, fmt.Sprintf("deal %s not found", deal.ID))
		}

		var stored int

		err = tx.GetContext(ctx, &stored,
			r.db.Rebind(`SELECT COUNT(*) FROM deal_status_history WHERE deal_id = ?`), deal.ID)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to count history")
		}

		return r.appendHistoryTx(ctx, tx, deal, stored)
	})
}

func (r *DealRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM deal_status_history WHERE deal_id = ?`), id)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to delete history")
		}

		res, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM deals WHERE id = ?`), id)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to delete deal")
		}

		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NewError(errcodes.DealNotFound, fmt.Sprintf("deal %s not found", id))
		}

		return nil
	})
}

// List возвращает сделки в порядке создания; пустой status означает все.
func (r *DealRepository) List(ctx context.Context, status value.DealStatus) ([]entity.Deal, error) {
	if status == "" {
		return r.selectDeals(ctx, `SELECT `+dealColumns+` FROM deals ORDER BY created_at, id`)
	}

	return r.selectDeals(ctx,
		r.db.Rebind(`SELECT `+dealColumns+` FROM deals WHERE status = ? ORDER BY created_at, id`),
		status.String())
}

// ListOpen: сделки, занимающие капитал.
func (r *DealRepository) ListOpen(ctx context.Context) ([]entity.Deal, error) {
	query, args, err := sqlx.In(`SELECT `+dealColumns+` FROM deals WHERE status IN (?) ORDER BY created_at, id`,
		[]string{value.DealStatusPending.String(), value.DealStatusApproved.String()})
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	return r.selectDeals(ctx, r.db.Rebind(query), args...)
}

func (r *DealRepository) selectDeals(ctx context.Context, query string, args ...any) ([]entity.Deal, error) {
	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list deals")
	}

	if len(schemas) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(schemas))
	for _, s := range schemas {
		ids = append(ids, s.ID)
	}

	histories, err := r.histories(ctx, ids)
	if err != nil {
		return nil, err
	}

	deals := make([]entity.Deal, 0, len(schemas))

	for i := range schemas {
		deal, err := schemas[i].toDomain(histories[schemas[i].ID])
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode deal")
		}

		deals = append(deals, deal)
	}

	return deals, nil
}

func (r *DealRepository) histories(ctx context.Context, ids []string) (map[string][]statusChangeSchema, error) {
	query, args, err := sqlx.In(`
		SELECT deal_id, seq, from_status, to_status, notes, operator, out_of_order, changed_at
		FROM deal_status_history
		WHERE deal_id IN (?)
		ORDER BY deal_id, seq`, ids)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	var rows []statusChangeSchema
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get history")
	}

	result := make(map[string][]statusChangeSchema, len(ids))
	for _, row := range rows {
		result[row.DealID] = append(result[row.DealID], row)
	}

	return result, nil
}

// appendHistoryTx сохраняет записи журнала, начиная с позиции from.
func (r *DealRepository) appendHistoryTx(ctx context.Context, tx *sqlx.Tx, deal entity.Deal, from int) error {
	query := `
		INSERT INTO deal_status_history (deal_id, seq, from_status, to_status, notes, operator, out_of_order, changed_at)
		VALUES (:deal_id, :seq, :from_status, :to_status, :notes, :operator, :out_of_order, :changed_at)`

	for i := from; i < len(deal.StatusHistory); i++ {
		row := fromStatusChange(deal.ID, i, deal.StatusHistory[i])
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError,
				fmt.Sprintf("failed to insert history at index %d", i))
		}
	}

	return nil
}
