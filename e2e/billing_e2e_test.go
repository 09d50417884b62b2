//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

const defaultBillingHTTPBase = "http://localhost:48080"

func billingBaseURL() string {
	if v := os.Getenv("BILLING_E2E_HTTP_BASE"); v != "" {
		return v
	}
	return defaultBillingHTTPBase
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient() *httpClient {
	return &httpClient{
		baseURL: billingBaseURL(),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) doJSON(t *testing.T, method, path string, body any, studentID, role string) (*http.Response, []byte) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if studentID != "" {
		req.Header.Set("X-Student-ID", studentID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp, data
}

func requireServer(t *testing.T, c *httpClient) {
	t.Helper()
	resp, _ := c.doJSON(t, http.MethodGet, "/health", nil, "", "")
	if resp.StatusCode != http.StatusOK {
		t.Skipf("billing server not reachable at %s", c.baseURL)
	}
}

func TestHealth(t *testing.T) {
	c := newHTTPClient()
	requireServer(t, c)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	c := newHTTPClient()
	requireServer(t, c)

	resp, _ := c.doJSON(t, http.MethodGet, "/installments/pending", nil, "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestIssueVoidReissueFlow(t *testing.T) {
	c := newHTTPClient()
	requireServer(t, c)

	studentID := os.Getenv("BILLING_E2E_STUDENT_ID")
	if studentID == "" {
		t.Skip("BILLING_E2E_STUDENT_ID not set")
	}

	resp, data := c.doJSON(t, http.MethodGet, "/installments/pending", nil, studentID, "student")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pending installments failed: %d %s", resp.StatusCode, data)
	}
	var installments []struct {
		Id uint64 `json:"id"`
	}
	if err := json.Unmarshal(data, &installments); err != nil {
		t.Fatalf("bad installments body: %v", err)
	}
	if len(installments) == 0 {
		t.Skip("student has no pending installments")
	}

	resp, data = c.doJSON(t, http.MethodGet, "/gateways", nil, studentID, "student")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("gateways failed: %d %s", resp.StatusCode, data)
	}
	var gateways []struct {
		Id uint64 `json:"id"`
	}
	if err := json.Unmarshal(data, &gateways); err != nil || len(gateways) == 0 {
		t.Fatalf("no gateways available: %v %s", err, data)
	}

	issueBody := map[string]any{
		"installment_ids": []uint64{installments[0].Id},
		"idempotency_key": uuid.NewString(),
		"gateway_id":      gateways[0].Id,
	}

	resp, data = c.doJSON(t, http.MethodPost, "/coupons", issueBody, studentID, "student")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("issue failed: %d %s", resp.StatusCode, data)
	}
	var coupon struct {
		Id uint64 `json:"id"`
	}
	if err := json.Unmarshal(data, &coupon); err != nil {
		t.Fatalf("bad coupon body: %v", err)
	}

	// Replaying the same idempotency key returns the same coupon.
	resp, data = c.doJSON(t, http.MethodPost, "/coupons", issueBody, studentID, "student")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replay expected 200, got %d %s", resp.StatusCode, data)
	}

	// A second coupon over the same installment conflicts.
	conflictBody := map[string]any{
		"installment_ids": []uint64{installments[0].Id},
		"idempotency_key": uuid.NewString(),
		"gateway_id":      gateways[0].Id,
	}
	resp, data = c.doJSON(t, http.MethodPost, "/coupons", conflictBody, studentID, "student")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflict expected 409, got %d %s", resp.StatusCode, data)
	}

	resp, _ = c.doJSON(t, http.MethodPost, fmt.Sprintf("/coupons/%d/void", coupon.Id), nil, studentID, "student")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("void expected 204, got %d", resp.StatusCode)
	}

	// Voiding freed the installment.
	resp, data = c.doJSON(t, http.MethodPost, "/coupons", conflictBody, studentID, "student")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reissue after void expected 201, got %d %s", resp.StatusCode, data)
	}
}
