package entity

import "time"

// Audit action tags.
const (
	ActionCouponIssue    = "coupon_issue"
	ActionCouponCancel   = "coupon_cancel"
	ActionCouponStatus   = "coupon_status_update"
	ActionCouponFail     = "coupon_fail"
	ActionPartialPayment = "partial_payment"
)

// AuditLog is a fire-and-forget action record. ActorID is nil for
// unauthenticated or system actors.
type AuditLog struct {
	ID      uint64
	ActorID *uint64
	Action  string
	Detail  string

	CreatedAt time.Time
}
