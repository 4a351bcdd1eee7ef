package persistence_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/internal/infrastructure/persistence"
	"card_arbitrage/pkg/dbtest"
	"card_arbitrage/pkg/errcodes"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "deals.db") + "?_foreign_keys=on"

	db, err := sqlx.Open("sqlite3", dsn)
	require.NoError(t, err)

	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, dbtest.MigrateFromFile(db, "../../../migrations/schema.sql"))

	return db
}

//nolint:gochecknoglobals
var created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testDeal(id string, status value.DealStatus, at time.Time) entity.Deal {
	rating := 99.5
	label := value.PSA(9)

	return entity.Deal{
		ID: id,
		Listing: entity.Listing{
			ID:           "ebay-" + id,
			Title:        "Lugia Neo Genesis PSA 9",
			CardName:     "Lugia",
			SetName:      "Neo Genesis",
			RawPrice:     decimal.RequireFromString("400.50"),
			SellerRating: &rating,
			GradingLabel: &label,
		},
		Assessment: entity.ConditionAssessment{
			Condition:      value.ConditionGraded,
			Confidence:     0.9,
			Multiplier:     2.5,
			GradingCompany: value.GradingCompanyPSA,
			Grade:          "9",
			Notes:          []string{"graded by PSA"},
		},
		ExpectedValue:    decimal.NewFromInt(2500),
		ROI:              488.24,
		ProfitMargin:     0.8298,
		ReprintRisk:      0.2,
		Recommendation:   value.RecommendationBuy,
		Confidence:       0.9,
		Reason:           entity.Reason{Message: "ROI 488.2% above 300%"},
		InvestmentAmount: decimal.RequireFromString("425.50"),
		Status:           status,
		StatusHistory: []entity.StatusChange{
			{To: value.DealStatusPending, Operator: "system", ChangedAt: at},
		},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestDealRepositoryRoundTrip(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewDealRepository(openDB(t))

	deal := testDeal("D1", value.DealStatusPending, created)
	rq.NoError(repo.Create(ctx, deal))

	err := repo.Create(ctx, deal)
	rq.True(domain.HasCode(err, errcodes.DealAlreadyTracked))

	got, err := repo.Get(ctx, "D1")
	rq.NoError(err)
	rq.Equal("Lugia", got.Listing.CardName)
	rq.True(got.Listing.RawPrice.Equal(deal.Listing.RawPrice))
	rq.Equal(value.PSA(9), *got.Listing.GradingLabel)
	rq.Equal(deal.Assessment, got.Assessment)
	rq.True(got.InvestmentAmount.Equal(deal.InvestmentAmount))
	rq.True(got.ExpectedValue.Equal(deal.ExpectedValue))
	rq.InDelta(deal.ROI, got.ROI, 1e-9)
	rq.Equal(value.RecommendationBuy, got.Recommendation)
	rq.Equal(value.DealStatusPending, got.Status)
	rq.Len(got.StatusHistory, 1)
	rq.True(created.Equal(got.CreatedAt))

	_, err = repo.Get(ctx, "missing")
	rq.True(domain.HasCode(err, errcodes.DealNotFound))
}

func TestDealRepositoryUpdateAppendsHistory(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewDealRepository(openDB(t))

	deal := testDeal("D1", value.DealStatusPending, created)
	rq.NoError(repo.Create(ctx, deal))

	deal.Status = value.DealStatusGraded
	deal.Grade = "9"
	deal.CertNumber = "X"
	deal.GradedValue = decimal.NewFromInt(2800)
	deal.StatusHistory = append(deal.StatusHistory,
		entity.StatusChange{From: value.DealStatusPending, To: value.DealStatusApproved, ChangedAt: created.Add(time.Hour)},
		entity.StatusChange{
			From:       value.DealStatusApproved,
			To:         value.DealStatusGraded,
			OutOfOrder: true,
			Operator:   "alice",
			ChangedAt:  created.Add(2 * time.Hour),
		},
	)
	rq.NoError(repo.Update(ctx, deal))

	got, err := repo.Get(ctx, "D1")
	rq.NoError(err)
	rq.Equal(value.DealStatusGraded, got.Status)
	rq.Equal("X", got.CertNumber)
	rq.True(got.GradedValue.Equal(decimal.NewFromInt(2800)))
	rq.Len(got.StatusHistory, 3)
	rq.True(got.StatusHistory[2].OutOfOrder)
	rq.Equal("alice", got.StatusHistory[2].Operator)
	rq.Equal(value.DealStatusApproved, got.StatusHistory[2].From)

	rq.True(domain.HasCode(repo.Update(ctx, testDeal("missing", value.DealStatusPending, created)), errcodes.DealNotFound))
}

func TestDealRepositoryListAndDelete(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewDealRepository(openDB(t))

	rq.NoError(repo.Create(ctx, testDeal("D1", value.DealStatusPending, created)))
	rq.NoError(repo.Create(ctx, testDeal("D2", value.DealStatusApproved, created.Add(time.Minute))))
	rq.NoError(repo.Create(ctx, testDeal("D3", value.DealStatusSold, created.Add(2*time.Minute))))

	all, err := repo.List(ctx, "")
	rq.NoError(err)
	rq.Len(all, 3)
	rq.Equal("D1", all[0].ID)
	rq.Len(all[2].StatusHistory, 1)

	sold, err := repo.List(ctx, value.DealStatusSold)
	rq.NoError(err)
	rq.Len(sold, 1)
	rq.Equal("D3", sold[0].ID)

	open, err := repo.ListOpen(ctx)
	rq.NoError(err)
	rq.Len(open, 2)

	rq.NoError(repo.Delete(ctx, "D1"))
	rq.True(domain.HasCode(repo.Delete(ctx, "D1"), errcodes.DealNotFound))

	open, err = repo.ListOpen(ctx)
	rq.NoError(err)
	rq.Len(open, 1)
	rq.Equal("D2", open[0].ID)
}

func TestVaultRepository(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewVaultRepository(openDB(t))

	position := entity.VaultPosition{
		DealID:         "D1",
		CardName:       "Lugia",
		SetName:        "Neo Genesis",
		AssetClass:     value.AssetClassGradedCards,
		GradingStatus:  value.GradingStatusGraded,
		GradingCompany: value.GradingCompanyPSA,
		Grade:          "9",
		CertNumber:     "X",
		PurchasePrice:  decimal.RequireFromString("425.50"),
		EstimatedValue: decimal.NewFromInt(2800),
		DateReceived:   created,
		HoldUntil:      created.AddDate(0, 0, 7),
		Location:       "vault",
	}

	rq.NoError(repo.Save(ctx, position))

	position.EstimatedValue = decimal.NewFromInt(3000)
	rq.NoError(repo.Save(ctx, position))

	positions, err := repo.List(ctx)
	rq.NoError(err)
	rq.Len(positions, 1)
	rq.True(positions[0].EstimatedValue.Equal(decimal.NewFromInt(3000)))
	rq.True(positions[0].PurchasePrice.Equal(position.PurchasePrice))
	rq.True(position.HoldUntil.Equal(positions[0].HoldUntil))
	rq.Equal(value.GradingCompanyPSA, positions[0].GradingCompany)

	rq.NoError(repo.Delete(ctx, "D1"))
	rq.NoError(repo.Delete(ctx, "D1"))

	positions, err = repo.List(ctx)
	rq.NoError(err)
	rq.Empty(positions)
}
