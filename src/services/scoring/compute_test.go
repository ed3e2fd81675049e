package scoring

import (
	"testing"

	"Backend-Evalhub/src/models"

	"github.com/stretchr/testify/assert"
)

func demoTemplate() *models.Template {
	return &models.Template{
		Name: "Startup Pitch",
		Items: []models.TemplateItem{
			{ID: "innovation", Title: "Innovation", MaxScore: 50, Weight: 3},
			{ID: "business", Title: "Business Model", MaxScore: 50, Weight: 2},
			{ID: "extra", Title: "Extra Credit", MaxScore: 10, Weight: 0, Bonus: true},
		},
	}
}

func TestComputeTotals(t *testing.T) {
	template := demoTemplate()

	t.Run("WeightedMeanWithBonus", func(t *testing.T) {
		scores := map[string]models.ItemScore{
			"innovation": {Score: 40},
			"business":   {Score: 30},
			"extra":      {Score: 5},
		}

		total, weighted := ComputeTotals(template, scores)

		// normalized: innovation=80, business=60
		// weighted = (80*3 + 60*2) / 5 = 72, plus 5 bonus points
		assert.InDelta(t, 70.0, total, 1e-9)
		assert.InDelta(t, 77.0, weighted, 1e-9)
	})

	t.Run("NoBonusScored", func(t *testing.T) {
		scores := map[string]models.ItemScore{
			"innovation": {Score: 50},
			"business":   {Score: 50},
		}

		total, weighted := ComputeTotals(template, scores)
		assert.InDelta(t, 100.0, total, 1e-9)
		assert.InDelta(t, 100.0, weighted, 1e-9)
	})

	t.Run("BonusClampedToItemMax", func(t *testing.T) {
		scores := map[string]models.ItemScore{
			"innovation": {Score: 40},
			"business":   {Score: 30},
			"extra":      {Score: 25}, // above the declared max of 10
		}

		_, weighted := ComputeTotals(template, scores)
		assert.InDelta(t, 82.0, weighted, 1e-9) // 72 + capped 10
	})

	t.Run("UncappedBonusWhenNoMaxDeclared", func(t *testing.T) {
		uncapped := demoTemplate()
		uncapped.Items[2].MaxScore = 0

		scores := map[string]models.ItemScore{
			"innovation": {Score: 40},
			"business":   {Score: 30},
			"extra":      {Score: 25},
		}

		_, weighted := ComputeTotals(uncapped, scores)
		assert.InDelta(t, 97.0, weighted, 1e-9) // 72 + 25
	})

	t.Run("ZeroScores", func(t *testing.T) {
		scores := map[string]models.ItemScore{
			"innovation": {Score: 0},
			"business":   {Score: 0},
		}

		total, weighted := ComputeTotals(template, scores)
		assert.Equal(t, 0.0, total)
		assert.Equal(t, 0.0, weighted)
	})

	t.Run("OrderIndependence", func(t *testing.T) {
		// Same entries assembled in different insertion orders must agree
		// bit for bit.
		forward := map[string]models.ItemScore{}
		forward["innovation"] = models.ItemScore{Score: 37.5}
		forward["business"] = models.ItemScore{Score: 12.25}
		forward["extra"] = models.ItemScore{Score: 3}

		backward := map[string]models.ItemScore{}
		backward["extra"] = models.ItemScore{Score: 3}
		backward["business"] = models.ItemScore{Score: 12.25}
		backward["innovation"] = models.ItemScore{Score: 37.5}

		totalA, weightedA := ComputeTotals(template, forward)
		totalB, weightedB := ComputeTotals(template, backward)

		assert.Equal(t, totalA, totalB)
		assert.Equal(t, weightedA, weightedB)
	})
}
