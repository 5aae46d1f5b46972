package matching

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labfund/fundops/internal/model"
)

var fixedNow = time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC)

func newMatcher() *Matcher {
	return New(DefaultWeights(), WithClock(func() time.Time { return fixedNow }))
}

func nano() model.Project {
	return model.Project{
		ID:      "P-001",
		Name:    "新型纳米材料研究",
		Manager: "张伟",
		Partner: "建设银行",
	}
}

func deposit(ref, summary, bank string, daysAgo int) model.Deposit {
	return model.Deposit{
		Reference: ref,
		Date:      fixedNow.AddDate(0, 0, -daysAgo),
		BankName:  bank,
		Summary:   summary,
		Amount:    decimal.NewFromInt(10000),
	}
}

func TestScore_FullName(t *testing.T) {
	m := newMatcher()
	score, reasons := m.Score(deposit("D1", "新型纳米材料研究", "招商银行", 100), nano())
	assert.InDelta(t, 100, score, 0.0001)
	assert.Equal(t, []string{ReasonFullName}, reasons)
	assert.True(t, m.Recommended(score))
}

func TestScore_FullNameExcludesPrefix(t *testing.T) {
	m := newMatcher()
	score, reasons := m.Score(deposit("D1", "转入新型纳米材料研究项目经费", "招商银行", 100), nano())
	assert.InDelta(t, 100, score, 0.0001)
	assert.NotContains(t, reasons, ReasonNamePrefix)
}

func TestScore_NamePrefix(t *testing.T) {
	m := newMatcher()
	score, reasons := m.Score(deposit("D1", "新型纳米材课题款", "招商银行", 100), nano())
	assert.InDelta(t, 70, score, 0.0001)
	assert.Equal(t, []string{ReasonNamePrefix}, reasons)
}

func TestScore_Manager(t *testing.T) {
	m := newMatcher()
	score, reasons := m.Score(deposit("D1", "张伟 横向课题", "招商银行", 100), nano())
	assert.InDelta(t, 80, score, 0.0001)
	assert.Equal(t, []string{ReasonManager}, reasons)
}

func TestScore_Partner(t *testing.T) {
	m := newMatcher()
	score, reasons := m.Score(deposit("D1", "往来款", "中国建设银行北京分行", 100), nano())
	assert.InDelta(t, 90, score, 0.0001)
	assert.Equal(t, []string{ReasonPartner}, reasons)
}

func TestScore_AllRules(t *testing.T) {
	m := newMatcher()
	score, reasons := m.Score(deposit("D1", "新型纳米材料研究 张伟", "中国建设银行", 0), nano())
	assert.InDelta(t, 100+80+90+15, score, 0.0001)
	assert.Equal(t, []string{ReasonFullName, ReasonManager, ReasonPartner, ReasonRecency}, reasons)
}

func TestScore_Recency(t *testing.T) {
	tests := []struct {
		daysAgo int
		want    float64
	}{
		{0, 15},
		{15, 7.5},
		{29, 0.5},
		{30, 0},
		{90, 0},
		{-3, 15}, // future-dated
	}
	m := newMatcher()
	for _, tt := range tests {
		score, _ := m.Score(deposit("D", "unrelated", "unrelated", tt.daysAgo), nano())
		assert.InDelta(t, tt.want, score, 0.0001, "days ago %d", tt.daysAgo)
	}
}

func TestScore_EmptyProjectFieldsNeverMatch(t *testing.T) {
	m := newMatcher()
	score, reasons := m.Score(deposit("D1", "anything at all", "any bank", 100), model.Project{})
	assert.Zero(t, score)
	assert.Empty(t, reasons)
}

func TestScore_NormalisesText(t *testing.T) {
	m := newMatcher()
	p := model.Project{Name: "Graphene Sensors", Manager: "Li Na"}
	score, reasons := m.Score(deposit("D1", "payment GRAPHENE  SENSORS phase 2", "x", 100), p)
	assert.InDelta(t, 100, score, 0.0001)
	assert.Equal(t, []string{ReasonFullName}, reasons)
}

func TestRecommended_StrictThreshold(t *testing.T) {
	m := newMatcher()
	assert.False(t, m.Recommended(30))
	assert.True(t, m.Recommended(30.01))
	assert.False(t, m.Recommended(0))
}

func TestRank_Order(t *testing.T) {
	m := newMatcher()
	deposits := []model.Deposit{
		deposit("low", "unrelated", "unrelated", 10),        // 10, not recommended
		deposit("mgr", "张伟", "unrelated", 100),              // 80
		deposit("none", "unrelated", "unrelated", 100),       // 0
		deposit("full", "新型纳米材料研究", "unrelated", 100),     // 100
		deposit("partner", "unrelated", "中国建设银行", 100),     // 90
		deposit("low2", "unrelated", "unrelated", 10),       // 10, ties with low
	}
	ranked := m.Rank(deposits, ptr(nano()))
	require.Len(t, ranked, len(deposits))

	var refs []string
	for _, s := range ranked {
		refs = append(refs, s.Deposit.Reference)
	}
	assert.Equal(t, []string{"full", "partner", "mgr", "low", "low2", "none"}, refs)
	assert.True(t, ranked[0].Recommended)
	assert.True(t, ranked[2].Recommended)
	assert.False(t, ranked[3].Recommended)

	assert.Len(t, Recommendations(ranked), 3)
}

func TestRank_NilProject(t *testing.T) {
	m := newMatcher()
	deposits := []model.Deposit{
		deposit("a", "新型纳米材料研究", "中国建设银行", 0),
		deposit("b", "x", "y", 1),
	}
	ranked := m.Rank(deposits, nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Deposit.Reference)
	assert.Equal(t, "b", ranked[1].Deposit.Reference)
	for _, s := range ranked {
		assert.Zero(t, s.Score)
		assert.False(t, s.Recommended)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	m := newMatcher()
	deposits := []model.Deposit{
		deposit("a", "x", "y", 100),
		deposit("b", "新型纳米材料研究", "y", 100),
	}
	_ = m.Rank(deposits, ptr(nano()))
	assert.Equal(t, "a", deposits[0].Reference)
}

func TestSort_Idempotent(t *testing.T) {
	faker := gofakeit.New(42)
	m := newMatcher()
	p := nano()

	var deposits []model.Deposit
	for i := 0; i < 200; i++ {
		summary := faker.Sentence(4)
		switch i % 5 {
		case 0:
			summary += " " + p.Name
		case 1:
			summary += " " + p.Manager
		}
		deposits = append(deposits, deposit(faker.UUID(), summary, faker.Company(), faker.Number(0, 60)))
	}

	ranked := m.Rank(deposits, &p)
	again := make([]Scored, len(ranked))
	copy(again, ranked)
	Sort(again)
	assert.Equal(t, ranked, again)

	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		if prev.Recommended == cur.Recommended {
			assert.GreaterOrEqual(t, prev.Score, cur.Score)
		} else {
			assert.True(t, prev.Recommended, "recommended entries must come first")
		}
	}
}

func TestFromConfigWeightsApply(t *testing.T) {
	w := DefaultWeights()
	w.Threshold = 95
	w.RecencyMax = 0
	m := New(w, WithClock(func() time.Time { return fixedNow }))

	ranked := m.Rank([]model.Deposit{deposit("mgr", "张伟", "x", 0)}, ptr(nano()))
	require.Len(t, ranked, 1)
	assert.InDelta(t, 80, ranked[0].Score, 0.0001)
	assert.False(t, ranked[0].Recommended)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 6, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, -1, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func ptr[T any](v T) *T { return &v }
