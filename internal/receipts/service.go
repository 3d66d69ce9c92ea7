// Package receipts manages checkout transaction records. Receipts are
// created once, may be amended, and are never deleted.
package receipts

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tableq/tableq/internal/domain"
)

type Repository interface {
	CreateReceipt(ctx context.Context, receipt domain.Receipt) (domain.Receipt, error)
	GetReceipt(ctx context.Context, id int64) (*domain.Receipt, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Receipt, error)
	ListByRestaurant(ctx context.Context, restaurant string) ([]domain.Receipt, error)
	UpdateReceipt(ctx context.Context, receipt domain.Receipt) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, receipt domain.Receipt) (domain.Receipt, error) {
	if err := receipt.Validate(); err != nil {
		return domain.Receipt{}, err
	}
	created, err := s.repo.CreateReceipt(ctx, receipt)
	if err != nil {
		return domain.Receipt{}, errors.Wrap(err, "create receipt")
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Receipt, error) {
	return s.repo.GetReceipt(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]domain.Receipt, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListByRestaurant(ctx context.Context, restaurant string) ([]domain.Receipt, error) {
	return s.repo.ListByRestaurant(ctx, restaurant)
}

// Amend applies an explicit correction (e.g. fixing the tip) to an existing
// receipt. The amended receipt is validated as a whole; amendments that break
// the total arithmetic are rejected.
type Amendment struct {
	Tip           *int64
	Total         *int64
	PaymentMethod *string
	TransactionID *string
}

func (s *Service) Amend(ctx context.Context, id int64, amend Amendment) (*domain.Receipt, error) {
	receipt, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get receipt")
	}
	if receipt == nil {
		return nil, domain.ErrNotFound
	}

	if amend.Tip != nil {
		receipt.Tip = *amend.Tip
	}
	if amend.Total != nil {
		receipt.Total = *amend.Total
	}
	if amend.PaymentMethod != nil {
		receipt.PaymentMethod = *amend.PaymentMethod
	}
	if amend.TransactionID != nil {
		receipt.TransactionID = *amend.TransactionID
	}
	if amend.Tip != nil && amend.Total == nil {
		// A lone tip change carries the total with it.
		receipt.Total = receipt.Subtotal + receipt.Tax + receipt.Tip
	}

	if err := receipt.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateReceipt(ctx, *receipt); err != nil {
		return nil, errors.Wrap(err, "update receipt")
	}
	return receipt, nil
}
