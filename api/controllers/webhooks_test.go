package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	internalfruits "github.com/boosthq/boosthq-backend/internal/fruits"
	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/config"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
)

type stubFruitsService struct {
	result *internalfruits.WebhookResult
	err    error
	calls  int
}

func (s *stubFruitsService) List(ctx context.Context, actor auth.Actor) ([]models.FruitSku, error) {
	return nil, nil
}

func (s *stubFruitsService) Upsert(ctx context.Context, actor auth.Actor, input internalfruits.UpsertSkuInput) (*models.FruitSku, error) {
	return nil, nil
}

func (s *stubFruitsService) AdjustStock(ctx context.Context, actor auth.Actor, fruitID uuid.UUID, input internalfruits.AdjustStockInput) (*internalfruits.AdjustStockResult, error) {
	return nil, nil
}

func (s *stubFruitsService) Events(ctx context.Context, actor auth.Actor, fruitID uuid.UUID) ([]models.FruitStockEvent, error) {
	return nil, nil
}

func (s *stubFruitsService) Reserve(ctx context.Context, tx *gorm.DB, orderID string, fruitID uuid.UUID, qty int) error {
	return nil
}

func (s *stubFruitsService) ReserveForOrder(ctx context.Context, actor auth.Actor, orderID string, fruitID uuid.UUID, qty int) (*models.FruitSku, error) {
	return nil, nil
}

func (s *stubFruitsService) IngestWebhookReport(ctx context.Context, report internalfruits.WebhookReport) (*internalfruits.WebhookResult, error) {
	s.calls++
	return s.result, s.err
}

type fakeDedupeStore struct {
	seen map[string]bool
}

func newFakeDedupeStore() *fakeDedupeStore {
	return &fakeDedupeStore{seen: map[string]bool{}}
}

func (f *fakeDedupeStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeDedupeStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeDedupeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.seen[key] = true
	return nil
}

func (f *fakeDedupeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.seen, key)
	}
	return nil
}

func webhookRequest(body, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/fruits", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	return req
}

func TestFruitWebhookAppliesReport(t *testing.T) {
	svc := &stubFruitsService{result: &internalfruits.WebhookResult{
		Sku:     models.FruitSku{ID: uuid.New(), Name: "Dragon", Quantity: 4},
		Message: "Dragon stock increased to 4",
	}}
	handler := FruitWebhook(svc, newFakeDedupeStore(), config.WebhookConfig{DedupeTTL: 10 * time.Minute}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, webhookRequest(`{"content":"Found fruit: Dragon"}`, ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("expected one ingest call, got %d", svc.calls)
	}

	var envelope struct {
		Data struct {
			Fruit   FruitView `json:"fruit"`
			Message string    `json:"message"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Fruit.Name != "Dragon" || envelope.Data.Fruit.Quantity != 4 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestFruitWebhookRejectsBadSecret(t *testing.T) {
	svc := &stubFruitsService{}
	cfg := config.WebhookConfig{FruitSecret: "hunter2", DedupeTTL: 10 * time.Minute}
	handler := FruitWebhook(svc, newFakeDedupeStore(), cfg, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, webhookRequest(`{"content":"Found fruit: Dragon"}`, "wrong"))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatal("bad secret must not reach the service")
	}
}

func TestFruitWebhookIgnoresDuplicateMessages(t *testing.T) {
	svc := &stubFruitsService{result: &internalfruits.WebhookResult{
		Sku: models.FruitSku{ID: uuid.New(), Name: "Dragon", Quantity: 4},
	}}
	store := newFakeDedupeStore()
	handler := FruitWebhook(svc, store, config.WebhookConfig{DedupeTTL: 10 * time.Minute}, nil)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, webhookRequest(`{"content":"Found fruit: Dragon"}`, ""))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, webhookRequest(`{"content":"Found fruit: Dragon"}`, ""))
	if second.Code != http.StatusOK {
		t.Fatalf("duplicates are acknowledged, got %d", second.Code)
	}
	if svc.calls != 1 {
		t.Fatalf("duplicate must not be ingested twice, got %d calls", svc.calls)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(second.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["status"] != "duplicate_ignored" {
		t.Fatalf("unexpected duplicate response %s", second.Body.String())
	}
}

func TestFruitWebhookRetryAfterFailureIsIngested(t *testing.T) {
	svc := &stubFruitsService{err: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")}
	store := newFakeDedupeStore()
	handler := FruitWebhook(svc, store, config.WebhookConfig{DedupeTTL: 10 * time.Minute}, nil)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, webhookRequest(`{"content":"Found fruit: Dragon"}`, ""))
	if first.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d: %s", first.Code, first.Body.String())
	}

	svc.err = nil
	svc.result = &internalfruits.WebhookResult{
		Sku: models.FruitSku{ID: uuid.New(), Name: "Dragon", Quantity: 4},
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, webhookRequest(`{"content":"Found fruit: Dragon"}`, ""))
	if second.Code != http.StatusOK {
		t.Fatalf("retry after a transient failure must be ingested, got %d: %s", second.Code, second.Body.String())
	}
	if svc.calls != 2 {
		t.Fatalf("expected both deliveries to reach the service, got %d calls", svc.calls)
	}
}

func TestFruitWebhookRejectsEmptyContent(t *testing.T) {
	handler := FruitWebhook(&stubFruitsService{}, newFakeDedupeStore(), config.WebhookConfig{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, webhookRequest(`{"content":""}`, ""))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
