package calculator

import "github.com/hisaab-app/hisaab/internal/models"

// GroupTotal returns the sum of amounts over all expenses scoped to the
// given group. Zero when no expenses match.
func GroupTotal(expenses []models.Expense, groupID string) float64 {
	var total float64
	for _, e := range expenses {
		if e.GroupID == groupID {
			total += e.Amount
		}
	}
	return total
}
