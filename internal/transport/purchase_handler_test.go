package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mall-api/internal/domain"
	"mall-api/internal/service"

	"go.uber.org/zap"
)

type mockPurchaseRepository struct {
	records []*domain.PurchaseRecord
}

func newMockPurchaseRepository() *mockPurchaseRepository {
	return &mockPurchaseRepository{}
}

func (m *mockPurchaseRepository) Create(ctx context.Context, record *domain.PurchaseRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockPurchaseRepository) ListByUser(ctx context.Context, userName string) ([]*domain.PurchaseRecord, error) {
	var listed []*domain.PurchaseRecord
	for _, record := range m.records {
		if record.UserName == userName {
			listed = append(listed, record)
		}
	}
	return listed, nil
}

func newTestPurchaseHandler() (*PurchaseHandler, *mockPurchaseRepository) {
	purchaseRepo := newMockPurchaseRepository()
	purchaseService := service.NewPurchaseService(purchaseRepo)
	logger, _ := zap.NewDevelopment()
	return NewPurchaseHandler(purchaseService, logger), purchaseRepo
}

func TestRecordPurchaseBindsAuthenticatedUsername(t *testing.T) {
	handler, purchaseRepo := newTestPurchaseHandler()

	reqBody := RecordPurchaseRequest{ProductName: "widget"}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/purchases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(contextWithUsername(req.Context(), "alice"))
	w := httptest.NewRecorder()

	handler.RecordPurchase(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	if len(purchaseRepo.records) != 1 {
		t.Fatalf("Expected 1 stored record, got %d", len(purchaseRepo.records))
	}
	stored := purchaseRepo.records[0]
	if stored.UserName != "alice" {
		t.Errorf("Record should carry the token username, got %q", stored.UserName)
	}
	if stored.ProductName != "widget" {
		t.Errorf("Record should carry the requested product, got %q", stored.ProductName)
	}
}

func TestRecordPurchaseWithoutUsernameIsUnauthorized(t *testing.T) {
	handler, _ := newTestPurchaseHandler()

	reqBody := RecordPurchaseRequest{ProductName: "widget"}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/purchases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.RecordPurchase(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without auth context, got %d", w.Code)
	}
}

func TestRecordPurchaseRequiresProductName(t *testing.T) {
	handler, _ := newTestPurchaseHandler()

	body, _ := json.Marshal(RecordPurchaseRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/purchases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(contextWithUsername(req.Context(), "alice"))
	w := httptest.NewRecorder()

	handler.RecordPurchase(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing product name, got %d", w.Code)
	}
}

func TestListPurchasesReturnsOnlyOwnHistory(t *testing.T) {
	handler, purchaseRepo := newTestPurchaseHandler()

	now := time.Now()
	purchaseRepo.records = []*domain.PurchaseRecord{
		{ProductName: "widget", UserName: "alice", PurchaseTime: now},
		{ProductName: "gadget", UserName: "bob", PurchaseTime: now},
		{ProductName: "gizmo", UserName: "alice", PurchaseTime: now.Add(time.Minute)},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/purchases", nil)
	req = req.WithContext(contextWithUsername(req.Context(), "alice"))
	w := httptest.NewRecorder()

	handler.ListPurchases(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var listed []PurchaseResponse
	if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
		t.Fatalf("Could not decode history: %v", err)
	}

	if len(listed) != 2 {
		t.Fatalf("Expected 2 records for alice, got %d", len(listed))
	}
	for _, entry := range listed {
		if entry.ProductName == "gadget" {
			t.Error("History leaked another user's purchase")
		}
		if _, err := time.Parse(time.RFC3339, entry.PurchaseTime); err != nil {
			t.Errorf("Purchase time %q is not RFC3339: %v", entry.PurchaseTime, err)
		}
	}
}

func TestListPurchasesForFreshAccountIsEmptyArray(t *testing.T) {
	handler, _ := newTestPurchaseHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/purchases", nil)
	req = req.WithContext(contextWithUsername(req.Context(), "nobody"))
	w := httptest.NewRecorder()

	handler.ListPurchases(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	// An empty history is an empty JSON array, never null
	if body := bytes.TrimSpace(w.Body.Bytes()); string(body) != "[]" {
		t.Errorf("Expected empty array, got %s", body)
	}
}
