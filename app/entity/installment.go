package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one billing-period debt owed by a student.
//
// RemainingBalance is nil until the installment is first touched by a
// partial payment or a partial-coupon settlement; nil means the full
// nominal Amount is still owed. Once the balance reaches zero the status
// must be Paid.
type Installment struct {
	ID        uint64
	StudentID uint64
	StatusID  uint64

	Period  string
	Amount  decimal.Decimal
	DueDate time.Time

	RemainingBalance *decimal.Decimal

	// Populated by repository joins for read paths.
	StatusName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Outstanding returns the amount still owed: the remaining balance when
// tracked, otherwise the nominal amount.
func (i *Installment) Outstanding() decimal.Decimal {
	if i.RemainingBalance != nil {
		return *i.RemainingBalance
	}
	return i.Amount
}
