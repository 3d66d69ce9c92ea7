package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/tableq/tableq/internal/domain"
	"github.com/tableq/tableq/internal/receipts"
)

type receiptRequest struct {
	QueueEntryID  *int64               `json:"queue_entry_id,omitempty"`
	Restaurant    string               `json:"restaurant"`
	Items         []domain.ReceiptItem `json:"items"`
	Subtotal      int64                `json:"subtotal"`
	Tax           int64                `json:"tax"`
	Tip           int64                `json:"tip"`
	Total         int64                `json:"total"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	TransactionID string               `json:"transaction_id,omitempty"`
}

func (h *Handlers) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.receipts.Create(r.Context(), domain.Receipt{
		QueueEntryID:  req.QueueEntryID,
		OwnerID:       r.Header.Get(userIDHeader),
		Restaurant:    req.Restaurant,
		Items:         req.Items,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		Tip:           req.Tip,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if errors.Is(err, domain.ErrInvalidInput) {
		http.Error(w, "invalid receipt data", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *Handlers) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	receipt, err := h.receipts.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if receipt == nil {
		http.Error(w, "receipt not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *Handlers) MyReceipts(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(userIDHeader)
	if ownerID == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	list, err := h.receipts.ListByOwner(r.Context(), ownerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) RestaurantReceipts(w http.ResponseWriter, r *http.Request) {
	restaurant := chi.URLParam(r, "restaurant")
	list, err := h.receipts.ListByRestaurant(r.Context(), restaurant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) AmendReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req struct {
		Tip           *int64  `json:"tip,omitempty"`
		Total         *int64  `json:"total,omitempty"`
		PaymentMethod *string `json:"payment_method,omitempty"`
		TransactionID *string `json:"transaction_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.receipts.Amend(r.Context(), id, receipts.Amendment{
		Tip:           req.Tip,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "receipt not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, "invalid amendment", http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
