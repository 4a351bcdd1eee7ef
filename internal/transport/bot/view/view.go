package view

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/samber/lo"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/domain/service/vault"
)

// DealsPerPage задаёт размер страницы /deals.
const DealsPerPage = 5

const (
	StartMessage = `<b>Card arbitrage</b>

/status — капитал и лимиты
/deals — сделки, ожидающие решения
/approve <code>ID</code> — одобрить сделку
/reject <code>ID</code> [причина] — отклонить сделку
/vault — сводка по хранилищу
/ready — позиции, готовые к продаже`

	ApproveUsage    = "❌ Использование: /approve <code>ID</code>"
	RejectUsage     = "❌ Использование: /reject <code>ID</code> [причина]"
	NoPendingDeals  = "📭 Нет сделок, ожидающих решения"
	NothingReady    = "📭 Нет позиций, готовых к продаже"
	RequestFailed   = "❌ Не удалось выполнить запрос"
	CallbackFailed  = "❌ Ошибка получения данных"
	DealsPagePrefix = "deals_page"
)

// CommandArgs возвращает аргументы команды без её имени.
func CommandArgs(text string) []string {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return nil
	}

	return parts[1:]
}

func Capital(s entity.CapitalStatus) string {
	return fmt.Sprintf(`📊 <b>Капитал</b>

💰 <b>Всего:</b> $%s
📈 <b>В работе:</b> $%s (%d)
⏳ <b>Ожидают:</b> $%s (%d)
🛟 <b>Резерв:</b> $%s
🆓 <b>Доступно:</b> $%s
📉 <b>Потолок:</b> $%s, на сделку $%s
🔢 <b>Сделок:</b> %d из %d
⚖️ <b>Загрузка:</b> %.1f%%`,
		s.TotalAvailable.StringFixed(2),
		s.ActiveExposure.StringFixed(2), s.ActiveDealCount,
		s.PendingExposure.StringFixed(2), s.PendingDealCount,
		s.ReserveCash.StringFixed(2),
		s.AvailableForNewDeals.StringFixed(2),
		s.MaxTotalExposure.StringFixed(2), s.PerDealLimit.StringFixed(2),
		s.ActiveDealCount+s.PendingDealCount, s.MaxConcurrent,
		s.UtilizationPct,
	)
}

// DealsPage рисует страницу списка сделок. Номер страницы приводится к допустимому диапазону.
func DealsPage(deals []entity.Deal, page int) (text string, current, total int) {
	total = (len(deals) + DealsPerPage - 1) / DealsPerPage
	if total == 0 {
		return NoPendingDeals, 1, 1
	}

	current = min(max(page, 1), total)

	start := (current - 1) * DealsPerPage
	end := min(start+DealsPerPage, len(deals))

	var sb strings.Builder

	fmt.Fprintf(&sb, "📋 <b>Сделки</b> (Стр. %d/%d)\n\n", current, total)

	for _, d := range deals[start:end] {
		fmt.Fprintf(&sb, "%s <b>%s</b> (%s)\n💵 $%s → EV $%s, ROI %.1f%%\n🆔 <code>%s</code>\n\n",
			d.Recommendation,
			html.EscapeString(d.Listing.CardName),
			html.EscapeString(d.Listing.SetName),
			d.InvestmentAmount.StringFixed(2),
			d.ExpectedValue.StringFixed(2),
			d.ROI,
			d.ID,
		)
	}

	return strings.TrimRight(sb.String(), "\n"), current, total
}

func Vault(r vault.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `🏦 <b>Хранилище</b>

📦 <b>Позиций:</b> %d
💵 <b>Вложено:</b> $%s
💎 <b>Стоимость:</b> $%s
📈 <b>Нереализованная прибыль:</b> $%s (%.1f%%)
🛡 <b>Страховая стоимость:</b> $%s`,
		r.Summary.TotalPositions,
		r.Summary.CostBasis.StringFixed(2),
		r.Summary.CurrentValue.StringFixed(2),
		r.Summary.UnrealizedGains.StringFixed(2), r.Summary.ROIPercentage,
		r.Summary.InsuranceValue.StringFixed(2),
	)

	if len(r.Allocation) > 0 {
		classes := lo.Keys(r.Allocation)
		slices.Sort(classes)

		sb.WriteString("\n\n<b>Аллокация:</b>")

		for _, class := range classes {
			fmt.Fprintf(&sb, "\n• %s: %.1f%%", class, r.Allocation[class])
		}
	}

	if len(r.GradingOpportunities) > 0 {
		fmt.Fprintf(&sb, "\n\n🔬 <b>Кандидатов на грейдинг:</b> %d", len(r.GradingOpportunities))
	}

	return sb.String()
}

func ReadySales(sales []lifecycle.ReadySale) string {
	if len(sales) == 0 {
		return NothingReady
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "🏷 <b>Готовы к продаже (%d):</b>\n", len(sales))

	for i, sale := range sales {
		pos := sale.Position

		label := html.EscapeString(pos.CardName)
		if pos.Grade != "" {
			label = fmt.Sprintf("%s %s %s", label, pos.GradingCompany, html.EscapeString(pos.Grade))
		}

		fmt.Fprintf(&sb, "\n%d. %s — $%s, %d дн.", i+1, label, sale.SuggestedPrice.StringFixed(2), sale.DaysHeld)
	}

	return sb.String()
}

func Approved(d entity.AdmissionDecision) string {
	if !d.Allowed {
		return "⛔ Отказано: " + html.EscapeString(d.Reason)
	}

	return fmt.Sprintf("✅ Сделка <code>%s</code> одобрена на $%s", d.DealID, d.Amount.StringFixed(2))
}

func Rejected(d entity.Deal) string {
	return fmt.Sprintf("🗑 Сделка <code>%s</code> отклонена", d.ID)
}
