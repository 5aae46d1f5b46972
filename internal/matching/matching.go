// Package matching ranks incoming bank deposits against a research project so
// that the deposit most likely belonging to the project is offered first.
package matching

import (
	"math"
	"sort"
	"time"

	"github.com/labfund/fundops/internal/config"
	"github.com/labfund/fundops/internal/model"
	"github.com/labfund/fundops/internal/textnorm"
)

// Reasons reported on a Scored deposit.
const (
	ReasonFullName   = "full_name"
	ReasonNamePrefix = "name_prefix"
	ReasonManager    = "manager"
	ReasonPartner    = "partner"
	ReasonRecency    = "recency"
)

// Weights are the additive score contributions. They are tuning values, not
// business rules, and are read from configuration.
type Weights struct {
	FullName          float64
	NamePrefix        float64
	NamePrefixLength  int
	Manager           float64
	Partner           float64
	RecencyMax        float64
	RecencyWindowDays int
	Threshold         float64
}

// DefaultWeights returns the stock weights.
func DefaultWeights() Weights {
	return FromConfig(config.Default("", "").Matching)
}

// FromConfig converts the matching block of fundops.yaml.
func FromConfig(c config.MatchingConfig) Weights {
	return Weights{
		FullName:          c.FullName,
		NamePrefix:        c.NamePrefix,
		NamePrefixLength:  c.NamePrefixLength,
		Manager:           c.Manager,
		Partner:           c.Partner,
		RecencyMax:        c.RecencyMax,
		RecencyWindowDays: c.RecencyWindowDays,
		Threshold:         c.Threshold,
	}
}

// Scored is a deposit annotated with its match score for one project.
type Scored struct {
	Deposit     model.Deposit `json:"deposit"`
	Score       float64       `json:"score"`
	Recommended bool          `json:"recommended"`
	Reasons     []string      `json:"reasons,omitempty"`
}

// Matcher scores deposits. It holds no state between calls.
type Matcher struct {
	weights Weights
	now     func() time.Time
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithClock overrides the time source used for the recency bonus.
func WithClock(now func() time.Time) Option {
	return func(m *Matcher) { m.now = now }
}

// New creates a Matcher.
func New(w Weights, opts ...Option) *Matcher {
	m := &Matcher{weights: w, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Weights returns the weights in use.
func (m *Matcher) Weights() Weights {
	return m.weights
}

// Score computes the match score of d for p and the rules that contributed.
func (m *Matcher) Score(d model.Deposit, p model.Project) (float64, []string) {
	w := m.weights
	var score float64
	var reasons []string

	switch {
	case textnorm.Contains(d.Summary, p.Name):
		score += w.FullName
		reasons = append(reasons, ReasonFullName)
	case textnorm.Contains(d.Summary, textnorm.Prefix(textnorm.Normalize(p.Name), w.NamePrefixLength)):
		score += w.NamePrefix
		reasons = append(reasons, ReasonNamePrefix)
	}

	if textnorm.Contains(d.Summary, p.Manager) {
		score += w.Manager
		reasons = append(reasons, ReasonManager)
	}

	if textnorm.Contains(d.BankName, p.Partner) {
		score += w.Partner
		reasons = append(reasons, ReasonPartner)
	}

	if bonus := m.recencyBonus(d.Date); bonus > 0 {
		score += bonus
		reasons = append(reasons, ReasonRecency)
	}

	return score, reasons
}

// Recommended reports whether score clears the threshold.
func (m *Matcher) Recommended(score float64) bool {
	return score > m.weights.Threshold
}

// recencyBonus decays linearly from RecencyMax on the deposit day to zero at
// RecencyWindowDays. Deposits dated in the future count as same-day.
func (m *Matcher) recencyBonus(date time.Time) float64 {
	w := m.weights
	if date.IsZero() || w.RecencyWindowDays <= 0 || w.RecencyMax <= 0 {
		return 0
	}
	days := DaysBetween(date, m.now())
	if days < 0 {
		days = 0
	}
	bonus := w.RecencyMax * (1 - float64(days)/float64(w.RecencyWindowDays))
	return math.Max(0, bonus)
}

// DaysBetween returns the number of calendar days from a to b in b's location.
func DaysBetween(a, b time.Time) int {
	loc := b.Location()
	a = a.In(loc)
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, loc)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc)
	return int(math.Round(db.Sub(da).Hours() / 24))
}

// Rank scores every deposit against project and orders them recommended
// first, then by descending score. Equal entries keep their input order.
// A nil project leaves every deposit unscored in input order.
func (m *Matcher) Rank(deposits []model.Deposit, project *model.Project) []Scored {
	out := make([]Scored, len(deposits))
	for i, d := range deposits {
		out[i] = Scored{Deposit: d}
	}
	if project == nil {
		return out
	}

	for i := range out {
		score, reasons := m.Score(out[i].Deposit, *project)
		out[i].Score = score
		out[i].Recommended = m.Recommended(score)
		out[i].Reasons = reasons
	}
	Sort(out)
	return out
}

// Sort orders scored deposits recommended first, then by descending score.
// The sort is stable, so sorting an already sorted slice is a no-op.
func Sort(scored []Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Recommended != b.Recommended {
			return a.Recommended
		}
		return a.Score > b.Score
	})
}

// Recommendations returns only the recommended entries of a ranked slice.
func Recommendations(ranked []Scored) []Scored {
	var out []Scored
	for _, s := range ranked {
		if s.Recommended {
			out = append(out, s)
		}
	}
	return out
}
