package document

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/campuspay/ms-go-billing/app/entity"
	"github.com/shopspring/decimal"
)

func sampleVoucherData() *VoucherData {
	fullName := "Maria Lopez"
	docNumber := "30123456"
	balance := decimal.RequireFromString("90.00")

	return &VoucherData{
		Coupon: &entity.Coupon{
			ID:          12,
			StudentID:   10,
			TotalAmount: decimal.RequireFromString("300.00"),
			GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		},
		LineItems: []*entity.CouponLineItem{
			{CouponID: 12, InstallmentID: 1, Amount: decimal.RequireFromString("150.00")},
			{CouponID: 12, InstallmentID: 2, Amount: decimal.RequireFromString("150.00")},
		},
		Installments: []*entity.Installment{
			{ID: 2, Period: "2026-04", Amount: decimal.RequireFromString("150.00"), DueDate: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)},
			{ID: 1, Period: "2026-03", Amount: decimal.RequireFromString("150.00"), DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), RemainingBalance: &balance},
		},
		Profile: &entity.StudentProfile{
			StudentID:      10,
			FullName:       &fullName,
			DocumentNumber: &docNumber,
		},
		InstitutionName:    "Instituto Superior del Milagro N 8207",
		InstitutionAddress: "Alvarado 951, Salta",
	}
}

func TestVoucherRendererProducesPDF(t *testing.T) {
	renderer := NewVoucherRenderer("Easy Pay")

	pdf, err := renderer.Render(sampleVoucherData())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatal("expected a PDF header")
	}
	if !bytes.Contains(pdf, []byte("%%EOF")) {
		t.Fatal("expected a PDF trailer")
	}

	content := string(pdf)
	for _, want := range []string{"PAYMENT VOUCHER No 12", "Maria Lopez", "2026-03", "2026-04", "$ 300.00"} {
		if !strings.Contains(content, want) {
			t.Fatalf("rendered voucher missing %q", want)
		}
	}
}

func TestVoucherRendererSnapshotsLineItemAmounts(t *testing.T) {
	renderer := NewVoucherRenderer("Easy Pay")
	data := sampleVoucherData()
	// Installment 1 was partially settled since issuance; the voucher must
	// still show the snapshot amount, not the live balance.
	pdf, err := renderer.Render(data)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(string(pdf), "$ 90.00") {
		t.Fatal("voucher must not show the live balance")
	}
}

func TestVoucherRendererHandlesMissingProfile(t *testing.T) {
	renderer := NewVoucherRenderer("Easy Pay")
	data := sampleVoucherData()
	data.Profile = nil

	pdf, err := renderer.Render(data)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(string(pdf), "not specified") {
		t.Fatal("expected placeholder fields for missing profile")
	}
}

func TestVoucherRendererRejectsEmptyData(t *testing.T) {
	renderer := NewVoucherRenderer("Easy Pay")
	if _, err := renderer.Render(nil); err == nil {
		t.Fatal("expected error for nil data")
	}
	if _, err := renderer.Render(&VoucherData{}); err == nil {
		t.Fatal("expected error for missing coupon")
	}
}

func TestRegistryMatchesGatewayCaseInsensitively(t *testing.T) {
	registry := NewRegistry(NewVoucherRenderer("Easy Pay"))

	if _, ok := registry.Get("easy pay"); !ok {
		t.Fatal("expected case-insensitive match")
	}
	if _, ok := registry.Get(" Easy Pay "); !ok {
		t.Fatal("expected trimmed match")
	}
	if _, ok := registry.Get("Other Bank"); ok {
		t.Fatal("expected no renderer for unknown gateway")
	}
}

func TestVoucherMarksPartialTotal(t *testing.T) {
	renderer := NewVoucherRenderer("Easy Pay")
	data := sampleVoucherData()
	data.Coupon.IsPartial = true
	data.Coupon.TotalAmount = decimal.RequireFromString("100.00")

	pdf, err := renderer.Render(data)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(string(pdf), "TOTAL \\(partial payment\\)") {
		t.Fatal("expected partial total label")
	}
}
