package domain

import "time"

// Receipt is a checkout transaction record, loosely coupled to a queue entry.
// Monetary amounts are in minor currency units (cents). Receipts are created
// once and may be amended, never deleted.
type Receipt struct {
	ID            int64
	QueueEntryID  *int64
	OwnerID       string
	Restaurant    string
	Items         []ReceiptItem
	Subtotal      int64
	Tax           int64
	Tip           int64
	Total         int64
	PaymentMethod string
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ReceiptItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Validate checks the arithmetic instead of silently recomputing it: a
// receipt whose total does not match its parts is rejected.
func (r Receipt) Validate() error {
	if r.Restaurant == "" || len(r.Items) == 0 {
		return ErrInvalidInput
	}
	if r.Subtotal < 0 || r.Tax < 0 || r.Tip < 0 || r.Total < 0 {
		return ErrInvalidInput
	}
	if r.Total != r.Subtotal+r.Tax+r.Tip {
		return ErrInvalidInput
	}
	for _, it := range r.Items {
		if it.Name == "" || it.Price < 0 || it.Quantity < 1 {
			return ErrInvalidInput
		}
	}
	return nil
}
