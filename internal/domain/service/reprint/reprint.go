package reprint

import (
	"math"
	"regexp"
	"strings"
)

const (
	baseRisk = 0.5

	highRiskIncrement   = 0.3
	mediumRiskIncrement = 0.2
	lowRiskDecrement    = 0.3

	// DefaultCutoff: сделки с риском выше порога не доходят до скорера.
	DefaultCutoff = 0.7
)

//nolint:gochecknoglobals
var (
	// часто переиздаваемые персонажи
	highRiskKeywords = []string{"charizard", "pikachu", "mewtwo"}
	// современные механики
	mediumRiskKeywords = []string{"vmax", "v card", "gx", "sword shield", "sun moon"}
	// винтаж и первые издания
	lowRiskKeywords = []string{"first edition", "1st edition", "shadowless", "base set unlimited", "neo", "gym", "team rocket"}

	knownReprints = []string{"pokemon go charizard", "celebrations charizard", "classic collection"}
)

// Model оценивает риск переиздания карты по её названию.
type Model struct {
	cutoff    float64
	high      *regexp.Regexp
	medium    *regexp.Regexp
	low       *regexp.Regexp
	blacklist []string
}

func NewModel() *Model {
	return &Model{
		cutoff:    DefaultCutoff,
		high:      keywordsRegexp(highRiskKeywords),
		medium:    keywordsRegexp(mediumRiskKeywords),
		low:       keywordsRegexp(lowRiskKeywords),
		blacklist: knownReprints,
	}
}

func (m *Model) WithCutoff(cutoff float64) *Model {
	m.cutoff = cutoff
	return m
}

// WithBlacklist добавляет фразы, по которым карта считается переизданием.
func (m *Model) WithBlacklist(phrases ...string) *Model {
	for _, p := range phrases {
		m.blacklist = append(m.blacklist, strings.ToLower(strings.TrimSpace(p)))
	}

	return m
}

// Score возвращает риск в [0, 1]: 0.5 плюс/минус фиксированные шаги за каждое найденное ключевое слово.
func (m *Model) Score(cardName string) float64 {
	name := strings.ToLower(cardName)

	score := baseRisk
	score += highRiskIncrement * float64(countMatches(m.high, name))
	score += mediumRiskIncrement * float64(countMatches(m.medium, name))
	score -= lowRiskDecrement * float64(countMatches(m.low, name))

	return math.Round(min(max(score, 0), 1)*100) / 100
}

// Blacklisted сообщает, что текст совпадает с известным переизданием.
func (m *Model) Blacklisted(text string) (string, bool) {
	lower := strings.ToLower(text)

	for _, phrase := range m.blacklist {
		if phrase != "" && strings.Contains(lower, phrase) {
			return phrase, true
		}
	}

	return "", false
}

// Exceeds: риск выше порога отсечения.
func (m *Model) Exceeds(score float64) bool {
	return score > m.cutoff
}

func (m *Model) Cutoff() float64 {
	return m.cutoff
}

// countMatches считает различные ключевые слова, а не повторы одного и того же.
func countMatches(re *regexp.Regexp, text string) int {
	seen := make(map[string]struct{})

	for _, m := range re.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = struct{}{}
	}

	return len(seen)
}

func keywordsRegexp(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}

	return regexp.MustCompile(`(?:^|[^a-z0-9])(` + strings.Join(quoted, "|") + `)(?:$|[^a-z0-9])`)
}
