package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/internal/metrics"
	"card_arbitrage/pkg/contextx"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/logx"
)

const (
	DefaultMinHoldDays      = 7
	DefaultTargetSaleMarkup = 1.1
	DefaultVaultLocation    = "vault"
)

type Store interface {
	Create(ctx context.Context, deal entity.Deal) error
	Get(ctx context.Context, id string) (entity.Deal, error)
	Update(ctx context.Context, deal entity.Deal) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, status value.DealStatus) ([]entity.Deal, error)
	ListOpen(ctx context.Context) ([]entity.Deal, error)
}

// Vault: хранилище, куда попадают карты после грейдинга.
type Vault interface {
	Get(dealID string) (entity.VaultPosition, bool)
	AddPosition(ctx context.Context, pos entity.VaultPosition) error
	RemovePosition(ctx context.Context, dealID string, salePrice decimal.Decimal) (entity.Realization, bool, error)
	ReadyToSell(now time.Time) []entity.VaultPosition
}

type Config struct {
	MinHoldDays      int
	TargetSaleMarkup float64
	VaultLocation    string
}

func DefaultConfig() Config {
	return Config{
		MinHoldDays:      DefaultMinHoldDays,
		TargetSaleMarkup: DefaultTargetSaleMarkup,
		VaultLocation:    DefaultVaultLocation,
	}
}

// Update: данные, сопровождающие смену статуса.
type Update struct {
	Grade          string
	GradingCompany value.GradingCompany
	CertNumber     string
	EstimatedValue decimal.Decimal
	SalePrice      decimal.Decimal
	Notes          string
	Location       string
}

// ReadySale: позиция с истёкшим сроком удержания и рекомендуемой ценой продажи.
type ReadySale struct {
	Position       entity.VaultPosition `json:"position"`
	SuggestedPrice decimal.Decimal      `json:"suggestedPrice"`
	DaysHeld       int                  `json:"daysHeld"`
}

// Tracker ведёт сделку по цепочке статусов от PENDING до COMPLETED.
// Чтение и запись сделки выполняются под одной блокировкой, чтобы журнал не терял записи.
type Tracker struct {
	mu    sync.Mutex
	cfg   Config
	store Store
	vault Vault
	now   func() time.Time
	newID func() string
}

func NewTracker(cfg Config, store Store, vault Vault) *Tracker {
	return &Tracker{
		cfg:   cfg,
		store: store,
		vault: vault,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func (t *Tracker) WithIDGenerator(newID func() string) *Tracker {
	t.newID = newID
	return t
}

// Create начинает отслеживание сделки в статусе PENDING.
func (t *Tracker) Create(ctx context.Context, deal entity.Deal) (entity.Deal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if deal.ID == "" {
		deal.ID = t.newID()
	}

	deal.Status = value.DealStatusPending
	deal.StatusHistory = append(deal.StatusHistory, entity.StatusChange{
		To:        value.DealStatusPending,
		Notes:     deal.Reason.Message,
		Operator:  contextx.OperatorOrSystem(ctx).String(),
		ChangedAt: now,
	})

	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = now
	}

	deal.UpdatedAt = now

	if err := t.store.Create(ctx, deal); err != nil {
		return entity.Deal{}, fmt.Errorf("store.Create: %w", err)
	}

	metrics.StatusTransitions.WithLabelValues(value.DealStatusPending.String(), "true").Inc()

	logger(ctx).Info("deal tracked",
		slog.String(logx.FieldDealID, deal.ID),
		slog.String(logx.FieldCardName, deal.Listing.CardName),
		slog.String(logx.FieldRecommendation, deal.Recommendation.String()),
		slog.String(logx.FieldAmount, deal.InvestmentAmount.StringFixed(2)),
	)

	return deal, nil
}

// MarkApproved переводит PENDING-сделку в APPROVED. Вызывается только шлюзом капитала
// после проверки лимитов.
func (t *Tracker) MarkApproved(ctx context.Context, id, notes string) (entity.Deal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	deal, err := t.store.Get(ctx, id)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("store.Get: %w", err)
	}

	if deal.Status != value.DealStatusPending {
		return entity.Deal{}, domain.NewError(errcodes.InvalidDealStatus,
			fmt.Sprintf("deal %s is %s, only PENDING deals can be approved", id, deal.Status))
	}

	return t.transition(ctx, deal, true, value.DealStatusApproved, Update{Notes: notes})
}

// UpdateStatus переводит сделку в новый статус и дописывает журнал.
// Переход не на следующий шаг принимается, но помечается OutOfOrder.
// Для неизвестного id создаётся запись отслеживания.
// APPROVED здесь не принимается: он меняет экспозицию и выставляется только через MarkApproved.
func (t *Tracker) UpdateStatus(
	ctx context.Context,
	id string,
	status value.DealStatus,
	upd Update,
) (entity.Deal, error) {
	if status.Step() < 0 {
		return entity.Deal{}, domain.NewError(errcodes.InvalidDealStatus, fmt.Sprintf("unknown deal status %q", status))
	}

	if status == value.DealStatusApproved {
		return entity.Deal{}, domain.NewError(errcodes.ApprovalRequiresCapital,
			fmt.Sprintf("deal %s: APPROVED is set only by capital approval", id))
	}

	if status == value.DealStatusGraded {
		if err := validateGradingResult(upd); err != nil {
			return entity.Deal{}, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	deal, err := t.store.Get(ctx, id)
	known := err == nil

	if err != nil {
		if !domain.HasCode(err, errcodes.DealNotFound) {
			return entity.Deal{}, fmt.Errorf("store.Get: %w", err)
		}

		deal = entity.Deal{ID: id, CreatedAt: t.now()}
	}

	return t.transition(ctx, deal, known, status, upd)
}

func (t *Tracker) transition(
	ctx context.Context,
	deal entity.Deal,
	known bool,
	status value.DealStatus,
	upd Update,
) (entity.Deal, error) {
	now := t.now()

	from := deal.Status
	outOfOrder := known && !from.IsForwardStep(status)

	deal.Status = status
	deal.StatusHistory = append(deal.StatusHistory, entity.StatusChange{
		From:       from,
		To:         status,
		Notes:      upd.Notes,
		Operator:   contextx.OperatorOrSystem(ctx).String(),
		OutOfOrder: outOfOrder,
		ChangedAt:  now,
	})
	deal.UpdatedAt = now

	if upd.Grade != "" {
		deal.Grade = upd.Grade
	}

	if upd.CertNumber != "" {
		deal.CertNumber = upd.CertNumber
	}

	if status == value.DealStatusGraded {
		deal.GradedValue = upd.EstimatedValue
	}

	if status == value.DealStatusSold && upd.SalePrice.IsPositive() {
		deal.SalePrice = upd.SalePrice
	}

	var err error

	if known {
		err = t.store.Update(ctx, deal)
	} else {
		err = t.store.Create(ctx, deal)
	}

	if err != nil {
		return entity.Deal{}, fmt.Errorf("store: %w", err)
	}

	metrics.StatusTransitions.WithLabelValues(status.String(), strconv.FormatBool(!outOfOrder)).Inc()

	log := logger(ctx).With(
		slog.String(logx.FieldDealID, deal.ID),
		slog.String("from", from.String()),
		slog.String(logx.FieldStatus, status.String()),
	)

	switch {
	case !known:
		log.Info("untracked deal picked up by status update")
	case outOfOrder:
		expected, _ := from.Next()
		log.Warn("out of order status transition", slog.String("expected", expected.String()))
	default:
		log.Info("deal status updated")
	}

	if err := t.applyEffects(ctx, deal, upd); err != nil {
		return entity.Deal{}, err
	}

	return deal, nil
}

// Reject удаляет сделку, которая ещё не куплена.
func (t *Tracker) Reject(ctx context.Context, id, reason string) (entity.Deal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	deal, err := t.store.Get(ctx, id)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("store.Get: %w", err)
	}

	if !deal.Status.IsRejectable() {
		return entity.Deal{}, domain.NewError(errcodes.DealNotRejectable,
			fmt.Sprintf("deal %s is %s, only PENDING or APPROVED deals can be rejected", id, deal.Status))
	}

	if err := t.store.Delete(ctx, id); err != nil {
		return entity.Deal{}, fmt.Errorf("store.Delete: %w", err)
	}

	logger(ctx).Info("deal rejected",
		slog.String(logx.FieldDealID, id),
		slog.String(logx.FieldStatus, deal.Status.String()),
		slog.String(logx.FieldReason, reason),
		slog.String(logx.FieldOperator, contextx.OperatorOrSystem(ctx).String()),
	)

	return deal, nil
}

func (t *Tracker) Get(ctx context.Context, id string) (entity.Deal, error) {
	deal, err := t.store.Get(ctx, id)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("store.Get: %w", err)
	}

	return deal, nil
}

// List возвращает сделки; пустой status означает все.
func (t *Tracker) List(ctx context.Context, status value.DealStatus) ([]entity.Deal, error) {
	deals, err := t.store.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("store.List: %w", err)
	}

	return deals, nil
}

// CheckReadyToSell: позиции, срок удержания которых истёк к now. Ничего не меняет.
func (t *Tracker) CheckReadyToSell(now time.Time) []ReadySale {
	positions := t.vault.ReadyToSell(now)

	result := make([]ReadySale, 0, len(positions))
	for _, pos := range positions {
		result = append(result, ReadySale{
			Position:       pos,
			SuggestedPrice: t.SuggestedListPrice(pos),
			DaysHeld:       int(now.Sub(pos.DateReceived).Hours() / 24),
		})
	}

	return result
}

// SuggestedListPrice: оценочная стоимость с наценкой на продажу.
func (t *Tracker) SuggestedListPrice(pos entity.VaultPosition) decimal.Decimal {
	return pos.EstimatedValue.Mul(decimal.NewFromFloat(t.cfg.TargetSaleMarkup)).Round(2)
}

func (t *Tracker) applyEffects(ctx context.Context, deal entity.Deal, upd Update) error {
	switch deal.Status {
	case value.DealStatusGraded:
		pos := t.position(deal, upd)
		if err := t.vault.AddPosition(ctx, pos); err != nil {
			return fmt.Errorf("vault.AddPosition: %w", err)
		}

	case value.DealStatusInVault:
		// сделка, минуя грейдинг, попадает в хранилище сырой картой
		if _, ok := t.vault.Get(deal.ID); ok {
			return nil
		}

		if _, err := t.intake(ctx, t.rawPosition(deal, upd)); err != nil {
			return err
		}

	case value.DealStatusSold:
		if !upd.SalePrice.IsPositive() {
			return nil
		}

		realization, ok, err := t.vault.RemovePosition(ctx, deal.ID, upd.SalePrice)
		if err != nil {
			return fmt.Errorf("vault.RemovePosition: %w", err)
		}

		if !ok {
			logger(ctx).Warn("sold deal has no vault position", slog.String(logx.FieldDealID, deal.ID))
			return nil
		}

		logger(ctx).Info("profit realized",
			slog.String(logx.FieldDealID, deal.ID),
			slog.String("profit", realization.Profit.StringFixed(2)),
			slog.Float64(logx.FieldROI, realization.ROI),
		)
	}

	return nil
}

// IntakePosition принимает в хранилище карту, купленную вне конвейера оценки.
// Пустые DealID, срок удержания и место хранения заполняются по умолчанию.
func (t *Tracker) IntakePosition(ctx context.Context, pos entity.VaultPosition) (entity.VaultPosition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pos.DealID == "" {
		pos.DealID = t.newID()
	} else if _, ok := t.vault.Get(pos.DealID); ok {
		return entity.VaultPosition{}, domain.NewError(errcodes.PositionAlreadyExists,
			fmt.Sprintf("vault position %s already exists", pos.DealID))
	}

	return t.intake(ctx, pos)
}

func (t *Tracker) intake(ctx context.Context, pos entity.VaultPosition) (entity.VaultPosition, error) {
	now := t.now()

	if pos.DateReceived.IsZero() {
		pos.DateReceived = now
	}

	if pos.HoldUntil.IsZero() {
		pos.HoldUntil = pos.DateReceived.AddDate(0, 0, t.cfg.MinHoldDays)
	}

	if pos.Location == "" {
		pos.Location = t.cfg.VaultLocation
	}

	if err := t.vault.AddPosition(ctx, pos); err != nil {
		return entity.VaultPosition{}, fmt.Errorf("vault.AddPosition: %w", err)
	}

	return pos, nil
}

// rawPosition: позиция для сделки, положенной в хранилище без грейдинга.
// Купленный слэб остаётся грейдированной позицией со своей оценкой.
func (t *Tracker) rawPosition(deal entity.Deal, upd Update) entity.VaultPosition {
	estimated := upd.EstimatedValue
	if !estimated.IsPositive() {
		estimated = deal.Listing.RawPrice
	}

	pos := entity.VaultPosition{
		DealID:         deal.ID,
		CardName:       deal.Listing.CardName,
		SetName:        deal.Listing.SetName,
		AssetClass:     value.AssetClassRawCards,
		GradingStatus:  value.GradingStatusRaw,
		Condition:      deal.Assessment.Condition,
		PurchasePrice:  deal.Listing.RawPrice,
		EstimatedValue: estimated,
		Location:       upd.Location,
	}

	if deal.Assessment.IsGraded() {
		pos.AssetClass = value.AssetClassGradedCards
		pos.GradingStatus = value.GradingStatusGraded
		pos.Condition = ""
		pos.GradingCompany = deal.Assessment.GradingCompany
		pos.Grade = deal.Assessment.Grade
	}

	return pos
}

func (t *Tracker) position(deal entity.Deal, upd Update) entity.VaultPosition {
	now := t.now()

	company := upd.GradingCompany
	if company == "" {
		company = deal.Assessment.GradingCompany
	}

	if company == "" {
		company = value.GradingCompanyPSA
	}

	location := upd.Location
	if location == "" {
		location = t.cfg.VaultLocation
	}

	return entity.VaultPosition{
		DealID:         deal.ID,
		CardName:       deal.Listing.CardName,
		SetName:        deal.Listing.SetName,
		AssetClass:     value.AssetClassGradedCards,
		GradingStatus:  value.GradingStatusGraded,
		GradingCompany: company,
		Grade:          upd.Grade,
		CertNumber:     upd.CertNumber,
		PurchasePrice:  deal.InvestmentAmount,
		EstimatedValue: upd.EstimatedValue,
		DateReceived:   now,
		HoldUntil:      now.AddDate(0, 0, t.cfg.MinHoldDays),
		Location:       location,
	}
}

func validateGradingResult(upd Update) error {
	var missing []string

	if upd.Grade == "" {
		missing = append(missing, "grade")
	}

	if upd.CertNumber == "" {
		missing = append(missing, "cert number")
	}

	if !upd.EstimatedValue.IsPositive() {
		missing = append(missing, "estimated value")
	}

	if len(missing) == 0 {
		return nil
	}

	return domain.NewError(errcodes.MissingGradingResult,
		"GRADED status requires "+strings.Join(missing, ", "))
}
