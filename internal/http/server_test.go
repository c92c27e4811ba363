package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"billsplit/internal/adapters"
	"billsplit/internal/billstore/memory"
	"billsplit/internal/core"
	"billsplit/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	svc := services.NewBillService(store, nil)
	srv := NewServer(":0", adapters.NewStoreAdapter(store, svc))
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

const sampleBillJSON = `{
	"store": "Corner Market",
	"address": "12 High Street",
	"phone": "555-0101",
	"billNumber": "B-42",
	"billDate": "2024-03-01T10:00:00.000Z",
	"time": "10:00",
	"cashier": "Dana",
	"paidBy": "Alice",
	"participants": ["Alice", "Bob"],
	"items": [
		{"name": "Pizza", "quantity": "2", "rate": 6.0, "value": "12.0", "participants": ["Alice", "Bob"]},
		{"name": "Soda", "quantity": 1, "rate": "4.0", "value": 4.0, "participants": ["Alice"]}
	]
}`

func saveSampleBill(t *testing.T, srv *Server) core.Bill {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bill/save", strings.NewReader(sampleBillJSON))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("save status=%d body=%s", rr.Code, rr.Body.String())
	}
	var saved core.Bill
	if err := json.Unmarshal(rr.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved bill: %v", err)
	}
	return saved
}

func TestSaveBill(t *testing.T) {
	srv := newTestServer(t)
	saved := saveSampleBill(t, srv)

	if saved.BillID != 1 {
		t.Fatalf("BillID=%d, want 1", saved.BillID)
	}
	if saved.TotalItems != 2 || saved.TotalQuantity != 3 || saved.TotalValue != 16.0 {
		t.Fatalf("totals=%d/%d/%v, want 2/3/16", saved.TotalItems, saved.TotalQuantity, saved.TotalValue)
	}
	for i, it := range saved.Items {
		if it.ItemID != i+1 {
			t.Fatalf("Items[%d].ItemID=%d, want %d", i, it.ItemID, i+1)
		}
	}
}

func TestSaveBillWithoutItems(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bill/save",
		strings.NewReader(`{"store": "Corner Market", "items": []}`))
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("an itemless bill must save, status=%d body=%s", rr.Code, rr.Body.String())
	}
	var saved core.Bill
	if err := json.Unmarshal(rr.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved bill: %v", err)
	}
	if saved.BillID != 1 {
		t.Fatalf("BillID=%d, want 1", saved.BillID)
	}
	if saved.TotalItems != 0 || saved.TotalQuantity != 0 || saved.TotalValue != 0 {
		t.Fatalf("totals=%d/%d/%v, want all zero", saved.TotalItems, saved.TotalQuantity, saved.TotalValue)
	}
}

func TestSaveBillRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"store": "x"`},
		{"non-numeric quantity", `{"items": [{"name": "Pizza", "quantity": "two", "value": 1}]}`},
		{"negative value", `{"items": [{"name": "Pizza", "quantity": 1, "value": -1}]}`},
		{"items not a list", `{"items": {"name": "Pizza"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/bill/save", strings.NewReader(tc.body))
			srv.Handler.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status=%d, want 422", rr.Code)
			}
			var apiErr apiError
			if err := json.Unmarshal(rr.Body.Bytes(), &apiErr); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if apiErr.Code != "ERRO1" {
				t.Fatalf("code=%q, want ERRO1", apiErr.Code)
			}
			if !strings.Contains(apiErr.Message, "Invalid bill format") {
				t.Fatalf("unexpected message %q", apiErr.Message)
			}
		})
	}
}

func TestGetBill(t *testing.T) {
	srv := newTestServer(t)
	saveSampleBill(t, srv)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var got core.Bill
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode bill: %v", err)
	}
	if got.BillDate != "01/03/2024" {
		t.Fatalf("BillDate=%q, want 01/03/2024", got.BillDate)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/99", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing bill status=%d, want 404", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/abc", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d, want 400", rr.Code)
	}
}

func TestListBills(t *testing.T) {
	srv := newTestServer(t)
	saveSampleBill(t, srv)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bills", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var bills []core.Bill
	if err := json.Unmarshal(rr.Body.Bytes(), &bills); err != nil {
		t.Fatalf("decode bills: %v", err)
	}
	if len(bills) != 1 || bills[0].Store != "Corner Market" {
		t.Fatalf("unexpected bills: %+v", bills)
	}
}

func TestBillItems(t *testing.T) {
	srv := newTestServer(t)
	saveSampleBill(t, srv)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1/items", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var items []core.ItemProjection
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items)=%d, want 2", len(items))
	}
	for _, it := range items {
		if it.ItemID != 0 {
			t.Fatalf("item id leaked into listing: %+v", it)
		}
	}
}

func TestPersonItems(t *testing.T) {
	srv := newTestServer(t)
	saveSampleBill(t, srv)

	// Matching is case-insensitive
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1/person/bob/items", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var items []core.ItemProjection
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Pizza" {
		t.Fatalf("unexpected items for bob: %+v", items)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1/person/Nobody/items", nil))
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("unknown person body=%q, want []", body)
	}
}

func TestBillItem(t *testing.T) {
	srv := newTestServer(t)
	saveSampleBill(t, srv)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1/item/2", nil))
	var items []core.ItemProjection
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != 2 || items[0].Name != "Soda" {
		t.Fatalf("unexpected item: %+v", items)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1/item/99", nil))
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("absent item body=%q, want []", body)
	}
}

func TestSplit(t *testing.T) {
	srv := newTestServer(t)
	saveSampleBill(t, srv)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1/split?format=json", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var result core.SplitResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode split: %v", err)
	}
	if len(result.Details) != 2 {
		t.Fatalf("len(details)=%d, want 2", len(result.Details))
	}
	if result.Details[0].Name != "Alice" || result.Details[0].Split != 10.0 {
		t.Fatalf("unexpected first split: %+v", result.Details[0])
	}
	if result.Details[1].Name != "Bob" || result.Details[1].Split != 6.0 {
		t.Fatalf("unexpected second split: %+v", result.Details[1])
	}
	if result.Total != 16.0 {
		t.Fatalf("total=%v, want 16", result.Total)
	}

	// Default representation is the rendered card page
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1/split", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("html status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type=%q", ct)
	}
	if body := rr.Body.String(); !strings.Contains(body, "Split Amount: ₹10.00") {
		t.Fatalf("rendered split missing share: %s", body)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/99/split", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing bill split status=%d, want 404", rr.Code)
	}
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No bills saved yet") {
		t.Fatalf("empty state missing: %s", rr.Body.String())
	}

	saveSampleBill(t, srv)
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rr.Body.String(), "Corner Market") {
		t.Fatalf("saved bill missing from index")
	}
}

func TestDownloadBill(t *testing.T) {
	srv := newTestServer(t)
	saveSampleBill(t, srv)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/1/download", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content type=%q", ct)
	}
	cd := rr.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, `attachment; filename="BILL_`) {
		t.Fatalf("content disposition=%q", cd)
	}
	if rr.Body.Len() == 0 {
		t.Fatal("empty workbook body")
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/99/download", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing bill download status=%d, want 404", rr.Code)
	}
}

func TestDownloadItems(t *testing.T) {
	srv := newTestServer(t)

	body := `[{"itemId": 9, "name": "Pizza", "quantity": "2", "rate": 6.0, "value": 12.0, "participants": ["Alice"]}]`
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/items/download", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	cd := rr.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, `attachment; filename="ITEMS_`) {
		t.Fatalf("content disposition=%q", cd)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/items/download", strings.NewReader(`{"not": "a list"}`)))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad payload status=%d, want 422", rr.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bills", nil))
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options=%q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options=%q", got)
	}
}

func TestRateLimitOnSave(t *testing.T) {
	srv := newTestServer(t)

	var last int
	for i := 0; i < 61; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bill/save", strings.NewReader(`{}`))
		srv.Handler.ServeHTTP(rr, req)
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after burst=%d, want 429", last)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bill/save", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d, want 405", rr.Code)
	}
}
