package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tableq/tableq/internal/domain"
)

type ReceiptRepository struct {
	mu       sync.RWMutex
	nextID   int64
	receipts map[int64]domain.Receipt
}

func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{nextID: 1, receipts: make(map[int64]domain.Receipt)}
}

func (r *ReceiptRepository) CreateReceipt(ctx context.Context, receipt domain.Receipt) (domain.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	receipt.ID = r.nextID
	r.nextID++
	now := time.Now()
	receipt.CreatedAt = now
	receipt.UpdatedAt = now
	r.receipts[receipt.ID] = receipt
	return receipt, nil
}

func (r *ReceiptRepository) GetReceipt(ctx context.Context, id int64) (*domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.receipts[id]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (r *ReceiptRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.Receipt
	for _, rec := range r.receipts {
		if rec.OwnerID == ownerID {
			list = append(list, rec)
		}
	}
	return list, nil
}

func (r *ReceiptRepository) ListByRestaurant(ctx context.Context, restaurant string) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.Receipt
	for _, rec := range r.receipts {
		if rec.Restaurant == restaurant {
			list = append(list, rec)
		}
	}
	return list, nil
}

func (r *ReceiptRepository) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.receipts[receipt.ID]
	if !ok {
		return domain.ErrNotFound
	}
	receipt.CreatedAt = existing.CreatedAt
	receipt.UpdatedAt = time.Now()
	r.receipts[receipt.ID] = receipt
	return nil
}
