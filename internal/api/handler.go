package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/outpost-calculator/internal/calculator"
	"github.com/eugenenazirov/outpost-calculator/internal/catalog"
	"github.com/eugenenazirov/outpost-calculator/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

var (
	errMissingAmount = errors.New("amount is required")
	errUnknownItem   = errors.New("item id does not exist in the catalog")
)

// Catalog is the read-only view of the module catalog the handlers need.
type Catalog interface {
	calculator.Resolver
	Categories() []catalog.Category
	Len() int
}

// Handler wires catalog and session storage dependencies into HTTP handlers.
type Handler struct {
	catalog Catalog
	storage storage.Storage
	logger  *zap.Logger

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithHandlerLogger attaches a logger for events that are not surfaced to clients.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(cat Catalog, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		catalog: cat,
		storage: store,
		logger:  zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := catalogResponse{
		Categories: h.catalog.Categories(),
		ItemCount:  h.catalog.Len(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateSelection starts a session. An optional {items:[{id, amount?}]}
// body seeds it, which lets a client restore a selection whose session expired.
func (h *Handler) handleCreateSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	sel, err := h.seedSelection(req.Items)
	if err != nil {
		writeSelectionError(w, err)
		return
	}
	id, err := h.storage.Create(sel)
	if err != nil {
		writeSelectionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSelectionView(id, sel))
}

func (h *Handler) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var view selectionView
	err := h.storage.View(id, func(sel *calculator.Selection) error {
		view = newSelectionView(id, sel)
		return nil
	})
	if err != nil {
		writeSelectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDeleteSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Delete(r.PathValue("id")); err != nil {
		writeSelectionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "itemId is required")
		return
	}

	id := r.PathValue("id")
	h.updateSelection(w, id, func(sel *calculator.Selection) error {
		if !sel.AddOrReplace(itemID) {
			h.logger.Debug("ignoring unknown catalog item",
				zap.String("selection_id", id),
				zap.String("item_id", itemID),
				zap.String("request_id", requestIDFromContext(r.Context())),
			)
		}
		return nil
	})
}

func (h *Handler) handleSetAmount(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req setAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	raw, err := amountText(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err.Error())
		return
	}

	h.updateSelection(w, r.PathValue("id"), func(sel *calculator.Selection) error {
		return sel.SetAmount(index, raw)
	})
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	h.updateSelection(w, r.PathValue("id"), func(sel *calculator.Selection) error {
		return sel.Remove(index)
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req selectionItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "items must contain at least one module")
		return
	}

	start := time.Now()
	sel, err := h.seedSelection(req.Items)
	if err != nil {
		writeSelectionError(w, err)
		return
	}
	elapsed := time.Since(start)

	view := newSelectionView("", sel)
	resp := calculateResponse{
		Entries:           view.Entries,
		Totals:            view.Totals,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// seedSelection builds a selection from items in order. A missing amount keeps
// the default of 1 and a repeated id replaces the earlier entry.
func (h *Handler) seedSelection(items []selectionItem) (*calculator.Selection, error) {
	sel := calculator.NewSelection(h.catalog)
	for _, item := range items {
		if !sel.AddOrReplace(item.ID) {
			return nil, fmt.Errorf("%w: %q", errUnknownItem, item.ID)
		}
		raw, err := amountText(item.Amount)
		if errors.Is(err, errMissingAmount) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", calculator.ErrInvalidAmount, item.ID, err)
		}
		if err := sel.SetAmountByID(item.ID, raw); err != nil {
			return nil, fmt.Errorf("%s: %w", item.ID, err)
		}
	}
	return sel, nil
}

// updateSelection applies fn to the stored selection and responds with the
// resulting view, or with the mapped error.
func (h *Handler) updateSelection(w http.ResponseWriter, id string, fn func(*calculator.Selection) error) {
	var view selectionView
	err := h.storage.Update(id, func(sel *calculator.Selection) error {
		if err := fn(sel); err != nil {
			return err
		}
		view = newSelectionView(id, sel)
		return nil
	})
	if err != nil {
		writeSelectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "index must be an integer")
		return 0, false
	}
	return index, true
}

// amountText turns a JSON string or number into the text the amount parser
// expects. Anything else is passed through verbatim and rejected downstream.
func amountText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errMissingAmount
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode amount: %w", err)
		}
		return s, nil
	}
	return string(raw), nil
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func newSelectionView(id string, sel *calculator.Selection) selectionView {
	entries := sel.Entries()
	view := selectionView{
		ID:      id,
		Entries: make([]entryView, 0, len(entries)),
		Totals:  sel.Totals(),
	}
	for i, entry := range entries {
		view.Entries = append(view.Entries, entryView{
			Index:         i,
			ID:            entry.Item.ID,
			Name:          entry.Item.Name,
			Amount:        entry.EffectiveAmount(),
			MaterialCosts: entry.Item.MaterialCosts,
		})
	}
	return view
}

type addItemRequest struct {
	ItemID string `json:"itemId"`
}

type setAmountRequest struct {
	Amount json.RawMessage `json:"amount"`
}

type selectionItem struct {
	ID     string          `json:"id"`
	Amount json.RawMessage `json:"amount,omitempty"`
}

type selectionItemsRequest struct {
	Items []selectionItem `json:"items"`
}

type entryView struct {
	Index         int                    `json:"index"`
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Amount        int                    `json:"amount"`
	MaterialCosts []catalog.MaterialCost `json:"materialCosts"`
}

type selectionView struct {
	ID      string            `json:"id"`
	Entries []entryView       `json:"entries"`
	Totals  calculator.Totals `json:"totals"`
}

type calculateResponse struct {
	Entries           []entryView       `json:"entries"`
	Totals            calculator.Totals `json:"totals"`
	CalculationTimeMs int64             `json:"calculationTimeMs"`
}

type catalogResponse struct {
	Categories []catalog.Category `json:"categories"`
	ItemCount  int                `json:"itemCount"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeSelectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Selection not found", err.Error(), "Create a new selection with POST /api/selections")
	case errors.Is(err, calculator.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, "Entry not found", err.Error())
	case errors.Is(err, calculator.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Invalid amount", err.Error(),
			fmt.Sprintf("Enter a whole number between 1 and %d", calculator.MaxAmount))
	case errors.Is(err, errUnknownItem):
		writeError(w, http.StatusBadRequest, "Unknown module", err.Error(), "Fetch GET /api/catalog for the list of valid module ids")
	case errors.Is(err, storage.ErrTooManySessions):
		writeError(w, http.StatusServiceUnavailable, "Service busy", err.Error(), "Retry once idle selections expire")
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
