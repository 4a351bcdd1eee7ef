package entity

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/value"
)

const UnknownSet = "Unknown"

// Listing: уже извлечённые поля объявления с маркетплейса. Не меняется после создания.
type Listing struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	CardName       string              `json:"cardName" validate:"required"`
	SetName        string              `json:"setName"`
	RawPrice       decimal.Decimal     `json:"rawPrice"`
	ConditionNotes string              `json:"conditionNotes"`
	SellerRating   *float64            `json:"sellerRating,omitempty" validate:"omitempty,gte=0,lte=100"`
	GradingLabel   *value.GradingLabel `json:"gradingLabel,omitempty" validate:"omitempty"`
	URL            string              `json:"url" validate:"omitempty,url"`
}

// Normalized возвращает копию с заполненными значениями по умолчанию.
func (l Listing) Normalized() Listing {
	l.CardName = strings.TrimSpace(l.CardName)
	l.SetName = strings.TrimSpace(l.SetName)

	if l.SetName == "" {
		l.SetName = UnknownSet
	}

	if l.Title == "" {
		l.Title = l.CardName
	}

	return l
}

// Key возвращает ключ дедупликации: внешний ID или ссылку.
// Без них ключ собирается из всех полей, влияющих на оценку.
func (l Listing) Key() string {
	if l.ID != "" {
		return l.ID
	}

	if l.URL != "" {
		return l.URL
	}

	parts := []string{l.CardName, l.SetName, l.RawPrice.String(), l.Title, l.ConditionNotes, "", ""}

	if l.SellerRating != nil {
		parts[5] = strconv.FormatFloat(*l.SellerRating, 'f', -1, 64)
	}

	if l.GradingLabel != nil {
		parts[6] = l.GradingLabel.String()
	}

	return strings.ToLower(strings.Join(parts, "|"))
}
