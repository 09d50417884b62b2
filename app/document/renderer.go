package document

import (
	"strings"

	"github.com/campuspay/ms-go-billing/app/entity"
)

// VoucherData is the finalized coupon snapshot handed to a renderer:
// header, line items, the installments they reference, and the owning
// student's profile (nil when not provisioned).
type VoucherData struct {
	Coupon       *entity.Coupon
	LineItems    []*entity.CouponLineItem
	Installments []*entity.Installment
	Profile      *entity.StudentProfile

	InstitutionName    string
	InstitutionAddress string
}

// Renderer turns a voucher snapshot into a downloadable byte stream.
type Renderer interface {
	GatewayName() string
	Render(data *VoucherData) ([]byte, error)
}

// Registry resolves the renderer for a settlement channel. Gateways
// without a registered renderer fall back to the placeholder redirect on
// download.
type Registry struct {
	renderers map[string]Renderer
}

func NewRegistry(renderers ...Renderer) *Registry {
	items := make(map[string]Renderer, len(renderers))
	for _, r := range renderers {
		items[strings.ToLower(r.GatewayName())] = r
	}
	return &Registry{renderers: items}
}

func (r *Registry) Get(gatewayName string) (Renderer, bool) {
	renderer, ok := r.renderers[strings.ToLower(strings.TrimSpace(gatewayName))]
	return renderer, ok
}
