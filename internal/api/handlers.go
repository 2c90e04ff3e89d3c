// Package api exposes the session over an HTTP JSON API.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fjacquet/statement-scanner/internal/export"
	"fjacquet/statement-scanner/internal/extraction"
	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"
	"fjacquet/statement-scanner/internal/report"
	"fjacquet/statement-scanner/internal/scanerror"
	"fjacquet/statement-scanner/internal/session"
	"fjacquet/statement-scanner/internal/validation"
)

// Handler serves the statement endpoints.
type Handler struct {
	session   *session.Session
	generator *report.Generator
	maxUpload int64
	log       logging.Logger
	now       func() time.Time
}

// NewHandler creates a handler. maxUploadBytes limits the uploaded document size.
func NewHandler(sess *session.Session, generator *report.Generator, maxUploadBytes int64, log logging.Logger) *Handler {
	return &Handler{
		session:   sess,
		generator: generator,
		maxUpload: maxUploadBytes,
		log:       log,
		now:       time.Now,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

// State handles GET /api/state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// Upload handles POST /api/statement with the document in the multipart
// field "file".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %d bytes", h.maxUpload))
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.log.WithError(err).Warn("Failed to close uploaded file")
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.WithError(err).Error("Failed to read uploaded file")
		WriteError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	doc := extraction.Document{
		Name:     header.Filename,
		MIMEType: validation.DetectMIMEType(header.Filename, header.Header.Get("Content-Type"), data),
		Data:     data,
	}

	if err := h.session.Upload(r.Context(), doc); err != nil {
		h.writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// Reset handles POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Reset(); err != nil {
		h.writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// Retry handles POST /api/retry
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Retry(); err != nil {
		h.writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// ListTransactions handles GET /api/transactions?search=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := h.session.Transactions(r.URL.Query().Get("search"))
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// SetTransactionCategory handles PUT /api/transactions/{id}/category
func (h *Handler) SetTransactionCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := r.PathValue("id")
	if !h.session.SetManualCategory(id, strings.TrimSpace(req.Category)) {
		WriteError(w, http.StatusNotFound, scanerror.ErrTransactionNotFound.Error())
		return
	}

	h.log.WithFields(
		logging.Field{Key: logging.FieldTransactionID, Value: id},
		logging.Field{Key: logging.FieldCategory, Value: req.Category},
	).Debug("Manual category set")
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/summary?search=&format=json|xml
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if err := validation.IsValidReportFormat(format); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := h.generator.Generate(h.session.Summary(r.URL.Query().Get("search")), format)
	if err != nil {
		h.log.WithError(err).Error("Failed to render summary")
		WriteError(w, http.StatusInternalServerError, "Failed to render summary")
		return
	}

	w.Header().Set("Content-Type", report.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Export handles GET /api/export?search=
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.session.Export(&buf, r.URL.Query().Get("search")); err != nil {
		if errors.Is(err, export.ErrNoTransactions) {
			WriteError(w, http.StatusNotFound, "No transactions to export")
			return
		}
		h.log.WithError(err).Error("Failed to export transactions")
		WriteError(w, http.StatusInternalServerError, "Failed to export transactions")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type ruleRequest struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// ListRules handles GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.session.Rules()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules":   rules,
		"orphans": h.session.OrphanRules(),
		"count":   len(rules),
	})
}

// CreateRule handles POST /api/rules
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rule, err := h.session.AddRule(models.KeywordRule{Keyword: req.Keyword, Category: req.Category})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rule)
}

// UpdateRule handles PUT /api/rules/{id}
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rule := models.KeywordRule{ID: r.PathValue("id"), Keyword: req.Keyword, Category: req.Category}
	found, err := h.session.UpdateRule(rule)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	if !found {
		WriteError(w, http.StatusNotFound, "Rule not found")
		return
	}
	WriteJSON(w, http.StatusOK, rule)
}

// DeleteRule handles DELETE /api/rules/{id}
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if !h.session.DeleteRule(r.PathValue("id")) {
		WriteError(w, http.StatusNotFound, "Rule not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveRule handles POST /api/rules/{id}/move
func (h *Handler) MoveRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position *int `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == nil {
		WriteError(w, http.StatusBadRequest, "Position is required")
		return
	}

	if !h.session.MoveRule(r.PathValue("id"), *req.Position) {
		WriteError(w, http.StatusNotFound, "Rule not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"rules": h.session.Rules()})
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.session.Categories()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory handles POST /api/categories. Adding an existing name is
// accepted and changes nothing.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	status := http.StatusOK
	if h.session.AddCategory(name) {
		status = http.StatusCreated
	}
	WriteJSON(w, status, models.CategoryConfig{Name: name, Color: h.session.ColorFor(name)})
}

// SetCategoryColor handles PUT /api/categories/{name}/color
func (h *Handler) SetCategoryColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	color, ok := models.PaletteColor(req.Color)
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unknown color: %s", req.Color))
		return
	}

	name := r.PathValue("name")
	if !h.session.SetCategoryColor(name, color) {
		WriteError(w, http.StatusNotFound, "Category not found")
		return
	}
	WriteJSON(w, http.StatusOK, models.CategoryConfig{Name: name, Color: color})
}

// Palette handles GET /api/palette
func (h *Handler) Palette(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"colors": models.Palette()})
}

func (h *Handler) writeSessionError(w http.ResponseWriter, err error) {
	var validationErr *scanerror.ValidationError
	var extractionErr *scanerror.ExtractionError
	var transitionErr *scanerror.TransitionError
	var ruleErr *scanerror.RuleError

	switch {
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusUnsupportedMediaType, scanerror.UserMessage(err))
	case errors.As(err, &extractionErr):
		WriteError(w, http.StatusBadGateway, scanerror.UserMessage(err))
	case errors.Is(err, scanerror.ErrExtractionInProgress):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &transitionErr):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &ruleErr):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNoGateway):
		WriteError(w, http.StatusServiceUnavailable, "Statement extraction is not configured")
	default:
		h.log.WithError(err).Error("Request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
