package pg

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tableq/tableq/internal/domain"
)

type ReceiptRepository struct {
	pool *pgxpool.Pool
}

func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

const receiptColumns = "id, queue_entry_id, COALESCE(owner_id, ''), restaurant, items, subtotal, tax, tip, total, COALESCE(payment_method, ''), COALESCE(transaction_id, ''), created_at, updated_at"

func (r *ReceiptRepository) CreateReceipt(ctx context.Context, receipt domain.Receipt) (domain.Receipt, error) {
	items, err := json.Marshal(receipt.Items)
	if err != nil {
		return domain.Receipt{}, err
	}

	var ownerID interface{}
	if receipt.OwnerID != "" {
		ownerID = receipt.OwnerID
	}

	now := time.Now()
	err = r.pool.QueryRow(ctx, `
		INSERT INTO receipts (queue_entry_id, owner_id, restaurant, items, subtotal, tax, tip, total, payment_method, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id
	`, receipt.QueueEntryID, ownerID, receipt.Restaurant, items, receipt.Subtotal,
		receipt.Tax, receipt.Tip, receipt.Total, receipt.PaymentMethod, receipt.TransactionID, now).Scan(&receipt.ID)
	if err != nil {
		return domain.Receipt{}, err
	}
	receipt.CreatedAt = now
	receipt.UpdatedAt = now
	return receipt, nil
}

func (r *ReceiptRepository) GetReceipt(ctx context.Context, id int64) (*domain.Receipt, error) {
	return scanReceipt(r.pool.QueryRow(ctx, `
		SELECT `+receiptColumns+` FROM receipts WHERE id = $1
	`, id))
}

func (r *ReceiptRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Receipt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+receiptColumns+` FROM receipts WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return scanReceipts(rows)
}

func (r *ReceiptRepository) ListByRestaurant(ctx context.Context, restaurant string) ([]domain.Receipt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+receiptColumns+` FROM receipts WHERE restaurant = $1 ORDER BY created_at DESC
	`, restaurant)
	if err != nil {
		return nil, err
	}
	return scanReceipts(rows)
}

func (r *ReceiptRepository) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	items, err := json.Marshal(receipt.Items)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE receipts
		SET items = $2, subtotal = $3, tax = $4, tip = $5, total = $6, payment_method = $7, transaction_id = $8, updated_at = $9
		WHERE id = $1
	`, receipt.ID, items, receipt.Subtotal, receipt.Tax, receipt.Tip, receipt.Total,
		receipt.PaymentMethod, receipt.TransactionID, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanReceipt(row pgx.Row) (*domain.Receipt, error) {
	var rec domain.Receipt
	var items []byte
	err := row.Scan(&rec.ID, &rec.QueueEntryID, &rec.OwnerID, &rec.Restaurant, &items,
		&rec.Subtotal, &rec.Tax, &rec.Tip, &rec.Total, &rec.PaymentMethod, &rec.TransactionID,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &rec.Items); err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanReceipts(rows pgx.Rows) ([]domain.Receipt, error) {
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		var rec domain.Receipt
		var items []byte
		if err := rows.Scan(&rec.ID, &rec.QueueEntryID, &rec.OwnerID, &rec.Restaurant, &items,
			&rec.Subtotal, &rec.Tax, &rec.Tip, &rec.Total, &rec.PaymentMethod, &rec.TransactionID,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &rec.Items); err != nil {
			return nil, err
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}
