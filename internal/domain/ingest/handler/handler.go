// Package handler exposes the statement import pipeline over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Shihan7021/fintrack1/internal/domain/commit"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/service"
	"github.com/Shihan7021/fintrack1/internal/domain/rules"
	"github.com/Shihan7021/fintrack1/pkg/export"
	"github.com/Shihan7021/fintrack1/pkg/money"
)

const userHeader = "X-User-ID"

// ImportHandler wires upload, preview, commit and cancel endpoints.
type ImportHandler struct {
	pipeline  *service.Pipeline
	registry  *service.Registry
	committer *commit.Committer
	rules     *rules.Service
	currency  string
	maxUpload int64
	logger    *slog.Logger
}

func NewImportHandler(
	pipeline *service.Pipeline,
	registry *service.Registry,
	committer *commit.Committer,
	ruleSvc *rules.Service,
	currency string,
	maxUpload int64,
	logger *slog.Logger,
) *ImportHandler {
	return &ImportHandler{
		pipeline:  pipeline,
		registry:  registry,
		committer: committer,
		rules:     ruleSvc,
		currency:  currency,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Register mounts the import routes on the router.
func (h *ImportHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/import/upload", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/api/import/{previewID}", h.GetPreview).Methods(http.MethodGet)
	r.HandleFunc("/api/import/{previewID}/export", h.ExportPreview).Methods(http.MethodGet)
	r.HandleFunc("/api/import/{previewID}/commit", h.Commit).Methods(http.MethodPost)
	r.HandleFunc("/api/import/{previewID}/cancel", h.Cancel).Methods(http.MethodPost)
}

type transactionView struct {
	Index       int    `json:"index"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Display     string `json:"display"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Note        string `json:"note"`
}

type previewView struct {
	PreviewID    string              `json:"previewId"`
	Transactions []transactionView   `json:"transactions"`
	Skipped      []ingest.SkippedRow `json:"skipped"`
	Categories   ingest.CategorySet  `json:"categories"`
	Summary      ingest.Summary      `json:"summary"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func (h *ImportHandler) previewView(batch *ingest.PreviewBatch) previewView {
	views := make([]transactionView, len(batch.Transactions))
	for i, tx := range batch.Transactions {
		views[i] = transactionView{
			Index:       i,
			Date:        tx.DateString(),
			Description: tx.Description,
			Amount:      tx.AmountString(),
			Display:     money.NewFromDecimal(tx.Amount, h.currency).Display(),
			Type:        string(tx.Direction),
			Category:    tx.Category,
			Note:        tx.Note,
		}
	}
	return previewView{
		PreviewID:    batch.ID.String(),
		Transactions: views,
		Skipped:      batch.Skips,
		Categories:   batch.Categories,
		Summary:      batch.Summarize(),
		CreatedAt:    batch.CreatedAt,
	}
}

// Upload handles POST /api/import/upload. It expects a multipart form with
// a "file" part and responds with the preview batch.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	batch, err := h.pipeline.Ingest(r.Context(), userID, header.Filename, data)
	if err != nil {
		h.logger.Warn("import failed",
			slog.String("filename", header.Filename),
			slog.Any("error", err),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.registry.Put(batch)
	writeJSON(w, http.StatusOK, h.previewView(batch))
}

func (h *ImportHandler) lookup(w http.ResponseWriter, r *http.Request) (*ingest.PreviewBatch, bool) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return nil, false
	}
	id, err := uuid.Parse(mux.Vars(r)["previewID"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid preview id")
		return nil, false
	}
	batch, err := h.registry.Get(id, userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "preview not found")
		return nil, false
	}
	return batch, true
}

// GetPreview handles GET /api/import/{previewID}.
func (h *ImportHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.previewView(batch))
}

// ExportPreview handles GET /api/import/{previewID}/export and streams the
// normalized rows as CSV.
func (h *ImportHandler) ExportPreview(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "statement-"+batch.ID.String()+".csv"))
	if err := export.WriteCSV(w, batch.Transactions); err != nil {
		h.logger.Warn("csv export failed", slog.Any("error", err))
	}
}

type categoryOverride struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
	// Remember saves the description/category pair as a merchant rule so
	// future imports auto-categorize the same merchant.
	Remember bool `json:"remember"`
}

type commitRequest struct {
	Overrides []categoryOverride `json:"overrides"`
}

type commitResponse struct {
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Commit handles POST /api/import/{previewID}/commit. Overrides are applied
// first, then every transaction is written to the store. A partially failed
// batch keeps its preview so the client can retry.
func (h *ImportHandler) Commit(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req commitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	for _, ov := range req.Overrides {
		if err := batch.SetCategory(ov.Index, ov.Category); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if ov.Remember {
			rule := rules.MerchantRule{
				ID:        uuid.New(),
				Pattern:   batch.Transactions[ov.Index].Description,
				MatchType: rules.MatchContains,
				Category:  ov.Category,
				CreatedAt: time.Now().UTC(),
			}
			if err := h.rules.Save(r.Context(), batch.UserID, rule); err != nil {
				h.logger.Warn("merchant rule not saved", slog.Any("error", err))
			}
		}
	}

	result, err := h.committer.Commit(r.Context(), batch)
	resp := commitResponse{
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Errors:    result.Errors,
	}
	if err != nil {
		var partial *commit.PartialFailureError
		if errors.As(err, &partial) {
			writeJSON(w, http.StatusMultiStatus, resp)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.registry.Remove(batch.ID)
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles POST /api/import/{previewID}/cancel.
func (h *ImportHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.registry.Remove(batch.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
