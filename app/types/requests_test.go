package types

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func jsonContext(t *testing.T, method, target, body string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func paramContext(t *testing.T, method, body, id string) echo.Context {
	t.Helper()
	ctx := jsonContext(t, method, "/", body)
	ctx.SetParamNames("id")
	ctx.SetParamValues(id)
	return ctx
}

func TestIssueCouponRequestParsesBody(t *testing.T) {
	ctx := jsonContext(t, http.MethodPost, "/coupons", `{
		"installment_ids": [1, 2],
		"idempotency_key": "a2f7c1e0-0000-4000-8000-000000000001",
		"gateway_id": 3,
		"partial_amount": "60.50"
	}`)

	req, err := NewIssueCouponRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(req.GetInstallmentIds()) != 2 || req.GetGatewayId() != 3 {
		t.Fatalf("unexpected request %+v", req)
	}
	if !req.GetPartialAmount().Equal(decimal.RequireFromString("60.50")) {
		t.Fatalf("unexpected partial amount %s", req.GetPartialAmount())
	}
}

func TestIssueCouponRequestTakesKeyFromHeader(t *testing.T) {
	ctx := jsonContext(t, http.MethodPost, "/coupons", `{"installment_ids":[1],"gateway_id":1}`)
	ctx.Request().Header.Set("Idempotency-Key", "a2f7c1e0-0000-4000-8000-000000000002")

	req, err := NewIssueCouponRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if req.GetIdempotencyKey() != "a2f7c1e0-0000-4000-8000-000000000002" {
		t.Fatalf("unexpected key %s", req.GetIdempotencyKey())
	}
}

func TestIssueCouponRequestValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		req  IssueCouponRequest
	}{
		{"no installments", IssueCouponRequest{GatewayId: 1}},
		{"zero installment id", IssueCouponRequest{InstallmentIds: []uint64{0}, GatewayId: 1}},
		{"no gateway", IssueCouponRequest{InstallmentIds: []uint64{1}}},
		{"bad key", IssueCouponRequest{InstallmentIds: []uint64{1}, GatewayId: 1, IdempotencyKey: "not-a-uuid"}},
		{"negative partial", IssueCouponRequest{InstallmentIds: []uint64{1}, GatewayId: 1, PartialAmount: decimal.RequireFromString("-1")}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.req.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestVoidCouponRequestAllowsEmptyBody(t *testing.T) {
	ctx := paramContext(t, http.MethodPost, "", "5")

	req, err := NewVoidCouponRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if req.GetId() != 5 || req.GetReason() != "" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestVoidCouponRequestTrimsReason(t *testing.T) {
	ctx := paramContext(t, http.MethodPost, `{"reason":"  duplicate  "}`, "5")

	req, err := NewVoidCouponRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if req.GetReason() != "duplicate" {
		t.Fatalf("unexpected reason %q", req.GetReason())
	}
}

func TestUpdateCouponStatusRequestRequiresStatus(t *testing.T) {
	ctx := paramContext(t, http.MethodPatch, `{}`, "5")

	req, err := NewUpdateCouponStatusRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing status_id")
	}
}

func TestPartialPaymentRequestRequiresPositiveAmount(t *testing.T) {
	ctx := paramContext(t, http.MethodPost, `{"amount":"0"}`, "3")

	req, err := NewPartialPaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for zero amount")
	}
}

func TestGetCouponRequestRejectsBadID(t *testing.T) {
	ctx := paramContext(t, http.MethodGet, "", "abc")

	if _, err := NewGetCouponRequestFromContext(ctx); err == nil {
		t.Fatal("expected parse error for non-numeric id")
	}
}

func TestCreateCatalogItemRequestRequiresName(t *testing.T) {
	ctx := jsonContext(t, http.MethodPost, "/admin/gateways", `{"description":"cash network"}`)

	req, err := NewCreateCatalogItemRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing name")
	}
}
