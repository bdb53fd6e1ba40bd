// Package seed loads demo users, groups, and expenses into an empty ledger
// so a fresh install has something to show.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hisaab-app/hisaab/internal/auth"
	"github.com/hisaab-app/hisaab/internal/calculator"
	"github.com/hisaab-app/hisaab/internal/ledger"
	"github.com/hisaab-app/hisaab/internal/models"
)

const demoPassword = "hisaab-demo"

// Run populates the ledger with demo data. It is a no-op when the ledger
// already has users.
func Run(ctx context.Context, l *ledger.Ledger, authn *auth.PasswordAuthenticator) error {
	if len(l.Users()) > 0 {
		slog.Debug("seed skipped, ledger not empty")
		return nil
	}

	rajesh, err := authn.Register(ctx, "Rajesh Sharma", "rajesh@example.com", demoPassword)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	priya, err := authn.Register(ctx, "Priya Patel", "priya@example.com", demoPassword)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	amit, err := authn.Register(ctx, "Amit Kumar", "amit@example.com", demoPassword)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	sunita, err := authn.Register(ctx, "Sunita Singh", "sunita@example.com", demoPassword)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	parivar, err := l.AddGroup(ctx, ledger.GroupSpec{
		Name:        "Parivar",
		Description: "Family expenses",
		Color:       "orange",
		Icon:        "home",
		CreatorID:   rajesh.ID,
	})
	if err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}
	if _, err := l.AddMembers(ctx, parivar.ID, []string{priya.ID, sunita.ID}); err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}

	dostLog, err := l.AddGroup(ctx, ledger.GroupSpec{
		Name:        "Dost Log",
		Description: "Weekend trips and dinners",
		Color:       "teal",
		Icon:        "coffee",
		CreatorID:   priya.ID,
	})
	if err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}
	if _, err := l.AddMembers(ctx, dostLog.ID, []string{rajesh.ID, amit.ID}); err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}

	karyalaya, err := l.AddGroup(ctx, ledger.GroupSpec{
		Name:        "Karyalaya",
		Description: "Office lunches",
		Color:       "indigo",
		Icon:        "briefcase",
		CreatorID:   amit.ID,
	})
	if err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}
	if _, err := l.AddMembers(ctx, karyalaya.ID, []string{sunita.ID}); err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}

	now := time.Now()
	daysAgo := func(n int) int64 { return now.AddDate(0, 0, -n).Unix() }

	expenses := []ledger.ExpenseSpec{
		{
			GroupID:      parivar.ID,
			Title:        "Monthly groceries",
			Amount:       4200,
			Category:     models.CategoryFood,
			PaidBy:       rajesh.ID,
			Date:         daysAgo(6),
			SplitBetween: []string{rajesh.ID, priya.ID, sunita.ID},
		},
		{
			GroupID:      parivar.ID,
			Title:        "Electricity bill",
			Amount:       1850,
			Category:     models.CategoryUtilities,
			PaidBy:       priya.ID,
			Date:         daysAgo(4),
			SplitBetween: []string{rajesh.ID, priya.ID, sunita.ID},
		},
		{
			GroupID:      dostLog.ID,
			Title:        "Goa cab fare",
			Amount:       2400,
			Category:     models.CategoryTransport,
			PaidBy:       amit.ID,
			Date:         daysAgo(12),
			SplitBetween: []string{priya.ID, rajesh.ID, amit.ID},
			Notes:        "Airport pickup and drop",
		},
		{
			GroupID:      dostLog.ID,
			Title:        "Beach shack dinner",
			Amount:       3150,
			Category:     models.CategoryFood,
			PaidBy:       priya.ID,
			Date:         daysAgo(11),
			SplitBetween: []string{priya.ID, rajesh.ID, amit.ID},
		},
		{
			GroupID:      karyalaya.ID,
			Title:        "Friday team lunch",
			Amount:       960,
			Category:     models.CategoryFood,
			PaidBy:       amit.ID,
			Date:         daysAgo(2),
			SplitBetween: []string{amit.ID, sunita.ID},
		},
		{
			GroupID:      karyalaya.ID,
			Title:        "Chai and samosa run",
			Amount:       240,
			Category:     models.CategoryFood,
			PaidBy:       sunita.ID,
			Date:         daysAgo(1),
			SplitBetween: []string{amit.ID, sunita.ID},
		},
	}
	for _, spec := range expenses {
		if _, err := l.AddExpense(ctx, spec); err != nil {
			return fmt.Errorf("seed expenses: %w", err)
		}
	}

	if err := l.SetActiveGroup(ctx, parivar.ID); err != nil {
		return fmt.Errorf("seed active group: %w", err)
	}

	slog.Info("seeded demo data",
		"users", len(l.Users()),
		"groups", len(l.Groups()),
		"total", calculator.GroupTotal(l.Expenses(), parivar.ID),
	)
	return nil
}
