package server

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/httpx/reply"
)

type catalogSource interface {
	Catalog() *catalog.Catalog
}

type CatalogServer struct {
	source catalogSource
}

func NewCatalogServer(source catalogSource) CatalogServer {
	return CatalogServer{
		source: source,
	}
}

// getV1Catalog: карты текущего снимка каталога с базовой ценой в [min, max], дорогие первыми.
func (s CatalogServer) getV1Catalog(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	minPrice, err := parseOptionalMoney("min", query.Get("min"))
	if err != nil {
		return err
	}

	maxPrice, err := parseOptionalMoney("max", query.Get("max"))
	if err != nil {
		return err
	}

	if minPrice.IsNegative() || maxPrice.IsNegative() || (!maxPrice.IsZero() && maxPrice.LessThan(minPrice)) {
		return invalidPriceRange(minPrice, maxPrice)
	}

	entries := s.source.Catalog().CardsInRange(minPrice, maxPrice)

	reply.JSON(r.Context(), w, http.StatusOK, newRESTCatalogEntries(entries))

	return nil
}

func invalidPriceRange(minPrice, maxPrice decimal.Decimal) error {
	return domain.NewError(errcodes.InvalidPrice,
		fmt.Sprintf("invalid price range [%s, %s]", minPrice.String(), maxPrice.String()))
}
