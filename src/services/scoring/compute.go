package scoring

import (
	"Backend-Evalhub/src/models"
)

// ComputeTotals derives the two aggregate scores of a submission from the
// template and the raw item scores.
//
// Each non-bonus score is normalized to a 0-100 scale
// (score / maxScore * 100). totalScore is the plain mean of the normalized
// scores; weightedTotal is the weight-normalized mean
// (sum(normalized*weight) / sum(weight)) plus the raw points of bonus items.
// A bonus item's contribution is clamped to its maxScore when one is
// declared (maxScore > 0); otherwise it is uncapped.
//
// Iteration follows template order, so the result does not depend on the
// order of the score map.
func ComputeTotals(template *models.Template, scores map[string]models.ItemScore) (totalScore, weightedTotal float64) {
	var (
		normSum   float64
		normCount float64
		weightSum float64
		weightAcc float64
		bonus     float64
	)

	for _, item := range template.Items {
		entry, ok := scores[item.ID]
		if !ok {
			continue
		}

		if item.Bonus {
			points := entry.Score
			if item.MaxScore > 0 && points > item.MaxScore {
				points = item.MaxScore
			}
			bonus += points
			continue
		}

		normalized := entry.Score / item.MaxScore * 100
		normSum += normalized
		normCount++
		weightSum += item.Weight
		weightAcc += normalized * item.Weight
	}

	if normCount > 0 {
		totalScore = normSum / normCount
	}
	if weightSum > 0 {
		weightedTotal = weightAcc/weightSum + bonus
	}
	return totalScore, weightedTotal
}
