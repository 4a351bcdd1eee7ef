package condition

import (
	"regexp"
	"strings"

	"card_arbitrage/internal/domain/value"
)

type impact int

const (
	impactLight impact = iota + 1
	impactMedium
	impactHeavy
)

// tierRule: явное упоминание состояния в тексте. Первое совпадение выигрывает.
type tierRule struct {
	condition  value.Condition
	keywords   []string
	confidence float64
	// фразы, которые не считаются упоминанием этого состояния ("excellent centering")
	ignore []string
	re     *regexp.Regexp
}

// negativeRule понижает состояние, но только с перечисленных ступеней.
type negativeRule struct {
	impact    impact
	keywords  []string
	from      []value.Condition
	downgrade value.Condition
	re        *regexp.Regexp
}

// positiveRule повышает уверенность и, если состояние не названо явно, само состояние.
type positiveRule struct {
	keywords   []string
	bonus      float64
	upgrade    value.Condition
	blockedBy  impact
	re         *regexp.Regexp
	notePrefix string
}

const (
	defaultConfidence = 0.5
	maxConfidence     = 0.95

	clearPhotosBonus   = 0.05
	specificFlawsBonus = 0.05
)

//nolint:gochecknoglobals
var specificFlaws = []string{"whitening", "scratch", "wear", "damage", "crease"}

func newTierRules() []tierRule {
	rules := []tierRule{
		{
			condition:  value.ConditionNearMintMint,
			keywords:   []string{"near mint/mint", "nm/m", "nm-mt", "nm-m", "gem mint"},
			confidence: 0.7,
		},
		{
			condition:  value.ConditionNearMint,
			keywords:   []string{"near mint", "nm"},
			confidence: 0.65,
		},
		{
			condition:  value.ConditionNearMintMint,
			keywords:   []string{"mint"},
			confidence: 0.6,
		},
		{
			condition:  value.ConditionExcellent,
			keywords:   []string{"excellent", "exc", "ex+"},
			confidence: 0.6,
			ignore:     []string{"excellent centering"},
		},
		{
			condition:  value.ConditionLightlyPlayed,
			keywords:   []string{"lightly played", "light play", "lp"},
			confidence: 0.55,
		},
		{
			condition:  value.ConditionPlayed,
			keywords:   []string{"moderately played", "heavily played", "played", "mp", "hp"},
			confidence: 0.55,
			ignore:     []string{"never played"},
		},
		{
			condition:  value.ConditionPoor,
			keywords:   []string{"poor", "damaged"},
			confidence: 0.6,
		},
	}

	for i := range rules {
		rules[i].re = keywordsRegexp(rules[i].keywords)
	}

	return rules
}

func newNegativeRules() []negativeRule {
	rules := []negativeRule{
		{
			impact:    impactHeavy,
			keywords:  []string{"crease", "creased", "bent", "water damage", "tear", "torn", "heavy wear"},
			downgrade: value.ConditionGood,
		},
		{
			impact:    impactMedium,
			keywords:  []string{"whitening", "scratch", "scratches", "scuff", "scuffs", "surface wear"},
			from:      []value.Condition{value.ConditionNearMintMint, value.ConditionNearMint},
			downgrade: value.ConditionExcellent,
		},
		{
			impact:    impactLight,
			keywords:  []string{"edge wear", "minor wear", "slight wear", "light wear"},
			from:      []value.Condition{value.ConditionNearMintMint},
			downgrade: value.ConditionNearMint,
		},
	}

	for i := range rules {
		rules[i].re = keywordsRegexp(rules[i].keywords)
	}

	return rules
}

func newPositiveRules() []positiveRule {
	rules := []positiveRule{
		{
			keywords:   []string{"pack fresh", "gem", "perfect centering", "straight to sleeve", "never played"},
			bonus:      0.10,
			upgrade:    value.ConditionNearMintMint,
			blockedBy:  impactLight,
			notePrefix: "Strong positive: ",
		},
		{
			keywords:   []string{"sharp corners", "clean", "excellent centering", "well centered", "crisp"},
			bonus:      0.05,
			upgrade:    value.ConditionNearMint,
			blockedBy:  impactMedium,
			notePrefix: "Medium positive: ",
		},
	}

	for i := range rules {
		rules[i].re = keywordsRegexp(rules[i].keywords)
	}

	return rules
}

// sellerRatingBonus: поправка уверенности по рейтингу продавца в процентах.
func sellerRatingBonus(rating float64) float64 {
	switch {
	case rating >= 99:
		return 0.10
	case rating >= 98:
		return 0.05
	case rating >= 95:
		return 0
	default:
		return -0.10
	}
}

// keywordsRegexp собирает регулярку, совпадающую с ключевым словом целиком, а не с частью слова.
func keywordsRegexp(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(kw)))
	}

	return regexp.MustCompile(`(?:^|[^a-z0-9])(` + strings.Join(quoted, "|") + `)(?:$|[^a-z0-9])`)
}

// matches возвращает найденные ключевые слова без повторов.
func matches(re *regexp.Regexp, text string) []string {
	found := re.FindAllStringSubmatch(text, -1)
	if len(found) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(found))
	result := make([]string, 0, len(found))

	for _, m := range found {
		if _, ok := seen[m[1]]; ok {
			continue
		}

		seen[m[1]] = struct{}{}
		result = append(result, m[1])
	}

	return result
}

func stripPhrases(text string, phrases []string) string {
	for _, phrase := range phrases {
		text = strings.ReplaceAll(text, phrase, " ")
	}

	return text
}
