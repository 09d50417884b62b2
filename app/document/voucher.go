package document

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/campuspay/ms-go-billing/app/entity"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const notSpecified = "not specified"

// VoucherRenderer produces the printable payment voucher for a cash
// settlement channel. One page: institution header, student block, the
// installments covered, and the payable total.
type VoucherRenderer struct {
	gatewayName string
}

func NewVoucherRenderer(gatewayName string) *VoucherRenderer {
	return &VoucherRenderer{gatewayName: gatewayName}
}

func (r *VoucherRenderer) GatewayName() string {
	return r.gatewayName
}

func (r *VoucherRenderer) Render(data *VoucherData) ([]byte, error) {
	if data == nil || data.Coupon == nil {
		return nil, fmt.Errorf("voucher data is incomplete")
	}
	coupon := data.Coupon

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, data.InstitutionName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, data.InstitutionAddress, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("PAYMENT VOUCHER No %d", coupon.ID), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Issued: "+coupon.GeneratedAt.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Pay before: "+coupon.DueDate.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, "STUDENT", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	studentFields := []struct {
		label string
		pick  func(*entity.StudentProfile) *string
	}{
		{"Name", func(p *entity.StudentProfile) *string { return p.FullName }},
		{"Document", func(p *entity.StudentProfile) *string { return p.DocumentNumber }},
		{"Enrollment", func(p *entity.StudentProfile) *string { return p.EnrollmentNumber }},
		{"Program", func(p *entity.StudentProfile) *string { return p.Program }},
	}
	for _, field := range studentFields {
		pdf.CellFormat(0, 5, field.label+": "+profileField(data.Profile, field.pick), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, "INSTALLMENTS COVERED", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 5, "Period", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Amount", "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	installments := make([]*entity.Installment, len(data.Installments))
	copy(installments, data.Installments)
	sort.Slice(installments, func(i, j int) bool {
		return installments[i].DueDate.Before(installments[j].DueDate)
	})
	amounts := lineItemAmounts(data.LineItems)
	for _, installment := range installments {
		amount := installment.Amount
		if snapshot, ok := amounts[installment.ID]; ok {
			amount = snapshot
		}
		pdf.CellFormat(120, 5, installment.Period, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, "$ "+amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	totalLabel := "TOTAL"
	if coupon.IsPartial {
		totalLabel = "TOTAL (partial payment)"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 6, totalLabel, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "$ "+coupon.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Payable at any %s branch until the date above.", r.gatewayName), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func profileField(profile *entity.StudentProfile, pick func(*entity.StudentProfile) *string) string {
	if profile == nil {
		return notSpecified
	}
	if v := pick(profile); v != nil && *v != "" {
		return *v
	}
	return notSpecified
}

func lineItemAmounts(items []*entity.CouponLineItem) map[uint64]decimal.Decimal {
	amounts := make(map[uint64]decimal.Decimal, len(items))
	for _, item := range items {
		amounts[item.InstallmentID] = item.Amount
	}
	return amounts
}
