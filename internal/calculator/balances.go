package calculator

import "github.com/hisaab-app/hisaab/internal/models"

// settleFloor is the residual below which debts are treated as settled,
// absorbing float64 rounding noise. One display cent.
const settleFloor = 0.01

// MemberBalance is one member's aggregate position across a set of expenses.
type MemberBalance struct {
	UserID     string  `json:"user_id"`
	NetBalance float64 `json:"net_balance"` // positive = owed money, negative = owes money
	TotalPaid  float64 `json:"total_paid"`  // sum of amounts this member paid
	TotalOwed  float64 `json:"total_owed"`  // sum of shares attributed to this member
}

// DebtEdge is a suggested payment from one member to another.
type DebtEdge struct {
	FromUserID string  `json:"from_user_id"`
	ToUserID   string  `json:"to_user_id"`
	Amount     float64 `json:"amount"`
}

// UserBalance computes the signed net position of one user across a set of
// expenses (typically already scoped to one group).
//
// For an expense the user paid, the user is credited the amount minus one
// share: the payer's own share is always excluded from what they are owed,
// even when the payer is also listed in the split. For an expense the user
// did not pay but participates in, one share is debited. Other expenses
// contribute zero.
//
// The reduction is order independent up to float64 rounding: positive means
// the user is owed money, negative means the user owes, zero means settled.
func UserBalance(expenses []models.Expense, userID string) float64 {
	var balance float64
	for _, e := range expenses {
		if len(e.SplitBetween) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.SplitBetween))
		switch {
		case e.PaidBy == userID:
			balance += e.Amount - share
		case e.SplitWith(userID):
			balance -= share
		}
	}
	return balance
}

// GroupBalances computes each member's aggregate position across the given
// expenses. The result preserves the order of memberIDs, and for every
// member NetBalance == TotalPaid - TotalOwed == UserBalance.
//
// A payer absorbs one share of each expense they paid whether or not they
// are listed in the split, so member balances net to zero exactly when
// every payer is also a split participant.
func GroupBalances(expenses []models.Expense, memberIDs []string) []MemberBalance {
	balances := make([]MemberBalance, len(memberIDs))
	for i, id := range memberIDs {
		balances[i] = MemberBalance{UserID: id}
	}

	index := make(map[string]*MemberBalance, len(memberIDs))
	for i := range balances {
		index[balances[i].UserID] = &balances[i]
	}

	for _, e := range expenses {
		if len(e.SplitBetween) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.SplitBetween))

		if payer, ok := index[e.PaidBy]; ok {
			payer.TotalPaid += e.Amount
			payer.TotalOwed += share
		}
		for _, id := range e.SplitBetween {
			if id == e.PaidBy {
				continue // payer's share already counted above
			}
			if member, ok := index[id]; ok {
				member.TotalOwed += share
			}
		}
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].TotalPaid - balances[i].TotalOwed
	}
	return balances
}

// SettleUp suggests payments that clear the given balances with few
// transactions, greedily matching debtors against creditors in input order.
// Residuals below one cent are dropped as rounding noise.
func SettleUp(balances []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, b := range balances {
		switch {
		case b.NetBalance > settleFloor:
			creditors = append(creditors, b)
		case b.NetBalance < -settleFloor:
			debtors = append(debtors, b)
		}
	}

	owed := make(map[string]float64, len(creditors))
	for _, c := range creditors {
		owed[c.UserID] = c.NetBalance
	}
	owing := make(map[string]float64, len(debtors))
	for _, d := range debtors {
		owing[d.UserID] = -d.NetBalance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].UserID
		creditor := creditors[j].UserID

		amount := owing[debtor]
		if owed[creditor] < amount {
			amount = owed[creditor]
		}

		if amount > settleFloor {
			edges = append(edges, DebtEdge{
				FromUserID: debtor,
				ToUserID:   creditor,
				Amount:     amount,
			})
		}

		owing[debtor] -= amount
		owed[creditor] -= amount

		if owing[debtor] < settleFloor {
			i++
		}
		if owed[creditor] < settleFloor {
			j++
		}
	}

	return edges
}
