package deliverkit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/deliverkit/types"
)

func TestScore_Components(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name                          string
		syntaxValid, hasMX, disposable bool
		mailbox                       types.Verdict
		want                          int
	}{
		{"all confirmed", true, true, false, types.VerdictExists, 100},
		{"no smtp check", true, true, false, types.VerdictUnknown, 70},
		{"mailbox rejected", true, true, false, types.VerdictNotExists, 40},
		{"disposable", true, true, true, types.VerdictUnknown, 50},
		{"no mx", true, false, false, types.VerdictUnknown, 40},
		{"no mx and disposable", true, false, true, types.VerdictUnknown, 20},
		{"invalid syntax forces zero", false, true, false, types.VerdictExists, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(w, tt.syntaxValid, tt.hasMX, tt.disposable, tt.mailbox)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestScore_UnknownMailboxContributesNothing(t *testing.T) {
	w := DefaultWeights()
	unknown := Score(w, true, true, false, types.VerdictUnknown)
	assert.Equal(t, 70, unknown, "unknown is not penalized, only unconfirmed")
}

func TestScore_ClampedAtZero(t *testing.T) {
	// A rejection can push pathological weight combinations below zero.
	w := Weights{Syntax: 10, MX: 0, NotDisposable: 0, Mailbox: 30}
	assert.Equal(t, 0, Score(w, true, false, true, types.VerdictNotExists))
}

func TestCategoryFor_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, types.CategoryExcellent},
		{90, types.CategoryExcellent},
		{89, types.CategoryGood},
		{70, types.CategoryGood},
		{69, types.CategoryFair},
		{50, types.CategoryFair},
		{49, types.CategoryPoor},
		{1, types.CategoryPoor},
		{0, types.CategoryInvalid},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryFor(tt.score), "score %d", tt.score)
	}
}

func TestRiskFor(t *testing.T) {
	assert.Equal(t, types.RiskLow, RiskFor(types.CategoryExcellent))
	assert.Equal(t, types.RiskMedium, RiskFor(types.CategoryGood))
	assert.Equal(t, types.RiskHigh, RiskFor(types.CategoryFair))
	assert.Equal(t, types.RiskVeryHigh, RiskFor(types.CategoryPoor))
	assert.Equal(t, types.RiskVeryHigh, RiskFor(types.CategoryInvalid))
}
