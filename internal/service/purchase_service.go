package service

import (
	"context"
	"fmt"
	"time"

	"mall-api/internal/domain"
	"mall-api/internal/repository"

	"github.com/google/uuid"
)

// PurchaseService defines the business logic for purchase history.
// Records are append-only and reference products and users by name only;
// neither is validated against its collection, so history survives product
// deletion.
type PurchaseService interface {
	RecordPurchase(ctx context.Context, productName, userName string) (*domain.PurchaseRecord, error)
	ListPurchases(ctx context.Context, userName string) ([]*domain.PurchaseRecord, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
}

// NewPurchaseService creates a new instance of PurchaseService
func NewPurchaseService(purchaseRepo repository.PurchaseRepository) PurchaseService {
	return &purchaseService{purchaseRepo: purchaseRepo}
}

// RecordPurchase appends a purchase record stamped with the current time
func (s *purchaseService) RecordPurchase(ctx context.Context, productName, userName string) (*domain.PurchaseRecord, error) {
	record := &domain.PurchaseRecord{
		ID:           uuid.New(),
		ProductName:  productName,
		UserName:     userName,
		PurchaseTime: time.Now(),
	}

	if err := s.purchaseRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	return record, nil
}

// ListPurchases retrieves the purchase history for one user
func (s *purchaseService) ListPurchases(ctx context.Context, userName string) ([]*domain.PurchaseRecord, error) {
	records, err := s.purchaseRepo.ListByUser(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return records, nil
}
