package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/tableq/tableq/internal/domain"
	"github.com/tableq/tableq/internal/idempotency"
	"github.com/tableq/tableq/internal/observability"
	"github.com/tableq/tableq/internal/queue"
	"github.com/tableq/tableq/internal/receipts"
)

// userIDHeader carries the opaque identity supplied by the external session
// provider. The service never interprets its format.
const userIDHeader = "X-User-ID"

type Handlers struct {
	queue    *queue.Service
	receipts *receipts.Service
	idemp    *idempotency.Idempotency
	logger   observability.Logger
}

func NewHandlers(queueSvc *queue.Service, receiptSvc *receipts.Service, idemp *idempotency.Idempotency, logger observability.Logger) *Handlers {
	return &Handlers{
		queue:    queueSvc,
		receipts: receiptSvc,
		idemp:    idemp,
		logger:   logger,
	}
}

type joinRequest struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Restaurant string    `json:"restaurant"`
	PartySize  int       `json:"party_size"`
	JoinTime   time.Time `json:"join_time,omitempty"`
}

type entryResponse struct {
	ID         int64  `json:"id"`
	Token      string `json:"token"`
	Name       string `json:"name"`
	Restaurant string `json:"restaurant"`
	PartySize  int    `json:"party_size"`
	JoinTime   string `json:"join_time"`
	ETA        string `json:"eta"`
	Status     string `json:"status"`
	Position   int    `json:"position"`
}

func toEntryResponse(e domain.QueueEntry) entryResponse {
	return entryResponse{
		ID:         e.ID,
		Token:      e.Token,
		Name:       e.Name,
		Restaurant: e.Restaurant,
		PartySize:  e.PartySize,
		JoinTime:   e.JoinTime.Format(time.RFC3339),
		ETA:        e.ETA.Format(time.RFC3339),
		Status:     string(e.Status),
		Position:   e.Position,
	}
}

func (h *Handlers) JoinQueue(w http.ResponseWriter, r *http.Request) {
	// Webhook joins carry no Idempotency-Key; only replay when one is set
	// and a store is wired.
	key := r.Header.Get("Idempotency-Key")
	if key != "" && h.idemp != nil {
		existing, err := h.idemp.Get(r.Context(), key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if existing != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(existing.Status)
			w.Write(existing.Result)
			return
		}
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.queue.Join(r.Context(), queue.JoinRequest{
		Name:       req.Name,
		Email:      req.Email,
		Restaurant: req.Restaurant,
		PartySize:  req.PartySize,
		JoinTime:   req.JoinTime,
		OwnerID:    r.Header.Get(userIDHeader),
	})
	var dup *domain.DuplicateEntryError
	if errors.As(err, &dup) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"message": "you already have an active queue entry",
			"entry":   toEntryResponse(dup.Existing),
		})
		return
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log(r).Error("failed to join queue", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"estimated_wait": fmt.Sprintf("%d minutes", int(entry.ETA.Sub(entry.JoinTime).Minutes())),
		"entry":          toEntryResponse(entry),
	}
	data, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(data)

	if key != "" && h.idemp != nil {
		h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})
	}
}

func (h *Handlers) GetMyEntry(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(userIDHeader)
	if ownerID == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	entry, err := h.queue.GetActiveByOwner(r.Context(), ownerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"entry": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entry": toEntryResponse(*entry)})
}

func (h *Handlers) ListQueue(w http.ResponseWriter, r *http.Request) {
	var (
		entries []domain.QueueEntry
		err     error
	)
	if restaurant := r.URL.Query().Get("restaurant"); restaurant != "" {
		entries, err = h.queue.GetByRestaurant(r.Context(), restaurant)
	} else {
		entries, err = h.queue.GetAll(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetQueueEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	entry, err := h.queue.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry == nil {
		http.Error(w, "queue entry not found", http.StatusNotFound)
		return
	}

	// Position is re-derived instead of trusting the cached field.
	position, err := h.queue.PositionOf(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := toEntryResponse(*entry)
	resp.Position = position
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) UpdateQueueEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.queue.UpdateStatus(r.Context(), id, domain.Status(req.Status))
	var illegal *domain.IllegalTransitionError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "queue entry not found", http.StatusNotFound)
		return
	case errors.As(err, &illegal):
		http.Error(w, illegal.Error(), http.StatusConflict)
		return
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	case err != nil:
		h.log(r).Error("failed to update queue entry", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(*entry))
}

func (h *Handlers) RemoveQueueEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	removed, err := h.queue.Remove(r.Context(), id)
	if err != nil {
		h.log(r).Error("failed to remove queue entry", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "queue entry not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "removed from queue"})
}

func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	entry, err := h.queue.GetByToken(r.Context(), req.Token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry == nil {
		http.Error(w, "invalid token", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(*entry))
}

// EntryQR renders the entry token as a PNG for the customer to present at
// the host stand.
func (h *Handlers) EntryQR(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	entry, err := h.queue.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry == nil {
		http.Error(w, "queue entry not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(entry.Token, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.ComputeStats(r.Context(), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

// log prefers the request-scoped logger so errors carry the request id.
func (h *Handlers) log(r *http.Request) observability.Logger {
	if l := loggerFrom(r.Context()); l != nil {
		return l
	}
	return h.logger
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
