package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func handlerEchoingPrincipal(t *testing.T, want Principal) echo.HandlerFunc {
	t.Helper()
	return func(ctx echo.Context) error {
		principal, ok := PrincipalFromContext(ctx)
		if !ok {
			t.Fatal("expected principal on context")
		}
		if principal != want {
			t.Fatalf("unexpected principal %+v, want %+v", principal, want)
		}
		return ctx.NoContent(http.StatusOK)
	}
}

func request(studentID, role string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if studentID != "" {
		req.Header.Set(HeaderStudentID, studentID)
	}
	if role != "" {
		req.Header.Set(HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestRequirePrincipalAcceptsStudent(t *testing.T) {
	rec, ctx := request("42", "student")
	h := RequirePrincipal()(handlerEchoingPrincipal(t, Principal{StudentID: 42}))
	if err := h(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePrincipalAcceptsAdmin(t *testing.T) {
	_, ctx := request("7", "Admin")
	h := RequirePrincipal()(handlerEchoingPrincipal(t, Principal{StudentID: 7, IsAdmin: true}))
	if err := h(ctx); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
}

func TestRequirePrincipalRejectsMissingIdentity(t *testing.T) {
	for _, tc := range []struct {
		name      string
		studentID string
		role      string
	}{
		{"no headers", "", ""},
		{"missing role", "42", ""},
		{"bad id", "abc", "student"},
		{"zero id", "0", "student"},
		{"unknown role", "42", "superuser"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec, ctx := request(tc.studentID, tc.role)
			h := RequirePrincipal()(func(echo.Context) error {
				t.Fatal("handler must not run")
				return nil
			})
			if err := h(ctx); err != nil {
				t.Fatalf("middleware failed: %v", err)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireAdminRejectsStudents(t *testing.T) {
	rec, ctx := request("42", "student")
	h := RequirePrincipal()(RequireAdmin()(func(echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	}))
	if err := h(ctx); err != nil {
		t.Fatalf("middleware failed: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminAllowsAdmins(t *testing.T) {
	rec, ctx := request("42", "admin")
	h := RequirePrincipal()(RequireAdmin()(func(ctx echo.Context) error {
		return ctx.NoContent(http.StatusOK)
	}))
	if err := h(ctx); err != nil {
		t.Fatalf("middleware failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
