package condition

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
)

type companyDetector struct {
	company     value.GradingCompany
	identifiers *regexp.Regexp
	grade       *regexp.Regexp
}

// Assessor определяет состояние или оценку карты по тексту объявления.
// Assess не имеет побочных эффектов, одинаковый вход всегда даёт одинаковый результат.
type Assessor struct {
	tiers     []tierRule
	negatives []negativeRule
	positives []positiveRule
	detectors []companyDetector
	flaws     *regexp.Regexp
}

func NewAssessor() *Assessor {
	detectors := make([]companyDetector, 0, len(value.GradingCompanies()))

	for _, company := range value.GradingCompanies() {
		ids := make([]string, 0, len(company.Identifiers()))
		for _, id := range company.Identifiers() {
			ids = append(ids, regexp.QuoteMeta(id))
		}

		alternation := strings.Join(ids, "|")

		detectors = append(detectors, companyDetector{
			company:     company,
			identifiers: regexp.MustCompile(`(?:^|[^a-z])(?:` + alternation + `)`),
			grade:       regexp.MustCompile(`(?:^|[^a-z])(?:` + alternation + `)\s*(?:grade\s*)?(10|[1-9](?:\.5)?)(?:[^0-9]|$)`),
		})
	}

	return &Assessor{
		tiers:     newTierRules(),
		negatives: newNegativeRules(),
		positives: newPositiveRules(),
		detectors: detectors,
		flaws:     regexp.MustCompile(`(?:^|[^a-z])(?:` + strings.Join(specificFlaws, "|") + `)`),
	}
}

// AssessListing учитывает явную метку грейдинга из объявления, если она есть.
func (a *Assessor) AssessListing(listing entity.Listing) entity.ConditionAssessment {
	if listing.GradingLabel != nil && listing.GradingLabel.Company != "" {
		return a.AssessGraded(*listing.GradingLabel)
	}

	return a.Assess(listing.Title, listing.ConditionNotes, listing.SellerRating)
}

// Assess сначала ищет грейдинговую метку, иначе оценивает сырую карту.
func (a *Assessor) Assess(title, description string, sellerRating *float64) entity.ConditionAssessment {
	text := strings.ToLower(strings.TrimSpace(title + " " + description))

	if label, ok := a.DetectGraded(text); ok {
		return a.AssessGraded(label)
	}

	return a.assessRaw(text, sellerRating)
}

// DetectGraded ищет компанию и оценку в тексте. Специальные метки проверяются раньше чисел.
func (a *Assessor) DetectGraded(text string) (value.GradingLabel, bool) {
	text = strings.ToLower(text)

	for _, d := range a.detectors {
		if !d.identifiers.MatchString(text) {
			continue
		}

		for _, label := range d.company.SpecialLabels() {
			if strings.Contains(text, strings.ToLower(label)) {
				return value.GradingLabel{Company: d.company, Grade: label}, true
			}
		}

		if m := d.grade.FindStringSubmatch(text); m != nil {
			return value.GradingLabel{Company: d.company, Grade: m[1]}, true
		}
	}

	return value.GradingLabel{}, false
}

func (a *Assessor) AssessGraded(label value.GradingLabel) entity.ConditionAssessment {
	note := fmt.Sprintf("%s grade: %s", label.Company, label.Grade)
	if label.IsSpecial() {
		note = fmt.Sprintf("%s special label: %s", label.Company, label.Grade)
	}

	return entity.ConditionAssessment{
		Condition:      value.ConditionGraded,
		Confidence:     label.Company.Confidence(),
		Multiplier:     label.Multiplier(),
		GradingCompany: label.Company,
		Grade:          label.Grade,
		Notes:          []string{note},
	}
}

func (a *Assessor) assessRaw(text string, sellerRating *float64) entity.ConditionAssessment {
	condition := value.ConditionGood
	confidence := defaultConfidence
	explicit := false

	var notes []string

	for _, rule := range a.tiers {
		if found := matches(rule.re, stripPhrases(text, rule.ignore)); len(found) > 0 {
			condition = rule.condition
			confidence = rule.confidence
			explicit = true
			notes = append(notes, "Explicitly mentioned: "+rule.condition.String())

			break
		}
	}

	var worst impact

	for _, rule := range a.negatives {
		found := matches(rule.re, text)
		if len(found) == 0 {
			continue
		}

		worst = max(worst, rule.impact)

		applies := len(rule.from) == 0 || slices.Contains(rule.from, condition)
		if applies && rule.downgrade.Below(condition) {
			condition = rule.downgrade
			notes = append(notes, fmt.Sprintf("Negative (%s): %s", rule.impact, strings.Join(found, ", ")))
		}
	}

	for _, rule := range a.positives {
		found := matches(rule.re, text)
		if len(found) == 0 {
			continue
		}

		confidence += rule.bonus
		notes = append(notes, rule.notePrefix+strings.Join(found, ", "))

		// уверенность растёт всегда, ступень повышается только без более тяжёлого дефекта
		blocked := worst != 0 && worst >= rule.blockedBy
		if !explicit && !blocked && condition.Below(rule.upgrade) {
			condition = rule.upgrade
		}
	}

	if strings.Contains(text, "clear photos") {
		confidence += clearPhotosBonus
		notes = append(notes, "Clear photos provided")
	}

	if a.flaws.MatchString(text) {
		confidence += specificFlawsBonus
		notes = append(notes, "Specific flaws mentioned")
	}

	if sellerRating != nil {
		confidence += sellerRatingBonus(*sellerRating)
		notes = append(notes, fmt.Sprintf("Seller rating: %.1f%%", *sellerRating))
	}

	return entity.ConditionAssessment{
		Condition:  condition,
		Confidence: clamp(confidence),
		Multiplier: condition.Multiplier(),
		Notes:      notes,
	}
}

// CalculateValue: базовая цена с учётом множителя оценки, округлённая до центов.
func (a *Assessor) CalculateValue(basePrice decimal.Decimal, assessment entity.ConditionAssessment) decimal.Decimal {
	return basePrice.Mul(decimal.NewFromFloat(assessment.Multiplier)).Round(2)
}

func clamp(confidence float64) float64 {
	return min(max(confidence, 0), maxConfidence)
}

func (i impact) String() string {
	switch i {
	case impactHeavy:
		return "heavy"
	case impactMedium:
		return "medium"
	case impactLight:
		return "light"
	default:
		return "none"
	}
}
