package value

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type GradingCompany string

const (
	GradingCompanyPSA GradingCompany = "PSA"
	GradingCompanyBGS GradingCompany = "BGS"
	GradingCompanyCGC GradingCompany = "CGC"
	GradingCompanySGC GradingCompany = "SGC"
)

// UnknownGradeMultiplier применяется к оценке, которой нет в таблице компании.
const UnknownGradeMultiplier = 0.5

type companyTable struct {
	confidence    float64
	identifiers   []string
	grades        map[string]float64
	specialLabels map[string]float64
}

// Порядок важен: детектор проверяет компании именно так.
//
//nolint:gochecknoglobals
var companyOrder = []GradingCompany{GradingCompanyPSA, GradingCompanyBGS, GradingCompanyCGC, GradingCompanySGC}

//nolint:gochecknoglobals
var companies = map[GradingCompany]companyTable{
	GradingCompanyPSA: {
		confidence:  0.90,
		identifiers: []string{"psa"},
		grades: map[string]float64{
			"10": 5.0, "9": 2.5, "8": 1.5, "7": 1.1, "6": 0.9,
			"5": 0.75, "4": 0.6, "3": 0.5, "2": 0.4, "1": 0.3,
		},
	},
	GradingCompanyBGS: {
		confidence:  0.88,
		identifiers: []string{"bgs", "beckett"},
		grades: map[string]float64{
			"10": 6.0, "9.5": 3.5, "9": 2.2, "8.5": 1.5, "8": 1.3, "7.5": 1.1, "7": 1.0,
		},
		specialLabels: map[string]float64{"Black Label": 10.0, "Pristine": 7.0},
	},
	GradingCompanyCGC: {
		confidence:  0.85,
		identifiers: []string{"cgc"},
		grades: map[string]float64{
			"10": 3.5, "9.5": 2.2, "9": 1.6, "8.5": 1.3, "8": 1.2, "7": 0.9,
		},
		specialLabels: map[string]float64{"Pristine 10": 6.0},
	},
	GradingCompanySGC: {
		confidence:  0.80,
		identifiers: []string{"sgc"},
		grades: map[string]float64{
			"10": 3.0, "9.5": 2.0, "9": 1.5, "8": 1.1, "7": 0.85,
		},
	},
}

func (g GradingCompany) String() string {
	return string(g)
}

// Confidence: фиксированная уверенность в оценке данной компании.
func (g GradingCompany) Confidence() float64 {
	return companies[g].confidence
}

// Identifiers: строки, по которым компания распознаётся в тексте лота (в нижнем регистре).
func (g GradingCompany) Identifiers() []string {
	return companies[g].identifiers
}

// SpecialLabels возвращает именованные метки компании; длинные первыми, чтобы "Pristine 10" проверялся раньше "Pristine".
func (g GradingCompany) SpecialLabels() []string {
	labels := lo.Keys(companies[g].specialLabels)

	slices.SortFunc(labels, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}

		return strings.Compare(a, b)
	})

	return labels
}

func GradingCompanies() []GradingCompany {
	return append([]GradingCompany(nil), companyOrder...)
}

func ParseGradingCompany(s string) (GradingCompany, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if normalized == "BECKETT" {
		return GradingCompanyBGS, nil
	}

	company := GradingCompany(normalized)
	if _, ok := companies[company]; !ok {
		return "", fmt.Errorf("unknown grading company %q", s)
	}

	return company, nil
}

// GradingLabel описывает оценку грейдинговой компании: число ("9.5") или специальная метка ("Black Label").
type GradingLabel struct {
	Company GradingCompany `json:"company" validate:"required,oneof=PSA BGS CGC SGC"`
	Grade   string         `json:"grade" validate:"required"`
}

func (l GradingLabel) String() string {
	return l.Company.String() + " " + l.Grade
}

func (l GradingLabel) IsSpecial() bool {
	_, ok := companies[l.Company].specialLabels[l.Grade]
	return ok
}

// Multiplier: множитель цены относительно базовой цены каталога.
func (l GradingLabel) Multiplier() float64 {
	table := companies[l.Company]

	if m, ok := table.specialLabels[l.Grade]; ok {
		return m
	}

	if m, ok := table.grades[normalizeGrade(l.Grade)]; ok {
		return m
	}

	return UnknownGradeMultiplier
}

// PSAEquivalent сводит оценку к целой шкале PSA; специальные метки считаются десяткой.
func (l GradingLabel) PSAEquivalent() int {
	if l.IsSpecial() {
		return 10
	}

	grade, err := strconv.ParseFloat(l.Grade, 64)
	if err != nil {
		return 0
	}

	return int(math.Floor(math.Min(math.Max(grade, 0), 10)))
}

// ParseGradingLabel разбирает строку вида "PSA 10" или "BGS Black Label".
func ParseGradingLabel(s string) (GradingLabel, error) {
	company, grade, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return GradingLabel{}, fmt.Errorf("grading label %q: want \"COMPANY GRADE\"", s)
	}

	c, err := ParseGradingCompany(company)
	if err != nil {
		return GradingLabel{}, err
	}

	label := GradingLabel{Company: c, Grade: strings.TrimSpace(grade)}
	for _, special := range c.SpecialLabels() {
		if strings.EqualFold(special, label.Grade) {
			label.Grade = special
		}
	}

	return label, nil
}

// PSA возвращает метку PSA с целой оценкой.
func PSA(grade int) GradingLabel {
	return GradingLabel{Company: GradingCompanyPSA, Grade: strconv.Itoa(grade)}
}

func normalizeGrade(grade string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(grade), 64)
	if err != nil {
		return grade
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
