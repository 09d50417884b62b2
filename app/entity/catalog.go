package entity

// Status catalogs are admin-editable rows; the engine matches them by name.
// These are the names the seed step guarantees to exist.
const (
	CouponStatusActive  = "Active"
	CouponStatusPaid    = "Paid"
	CouponStatusExpired = "Expired"
	CouponStatusVoided  = "Voided"

	InstallmentStatusPending = "Pending"
	InstallmentStatusOverdue = "Overdue"
	InstallmentStatusPaid    = "Paid"
	InstallmentStatusVoided  = "Voided"
)

// Default settlement channels, seeded by migrate so coupons can be issued
// on a fresh install.
const (
	PaymentGatewayEasyPay    = "Easy Pay"
	PaymentGatewayMacroClick = "Macro Click"
)

type CouponStatus struct {
	ID          uint64
	Name        string
	Description *string
}

type InstallmentStatus struct {
	ID          uint64
	Name        string
	Description *string
}

// PaymentGateway is a settlement channel, e.g. "Easy Pay".
type PaymentGateway struct {
	ID          uint64
	Name        string
	Description *string
}
