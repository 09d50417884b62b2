package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartialPayment is an append-only record of an amount applied directly
// against a single installment, outside the coupon flow.
type PartialPayment struct {
	ID            uint64
	InstallmentID uint64
	Amount        decimal.Decimal
	Channel       string
	CreatedAt     time.Time
}
