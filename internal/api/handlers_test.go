package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-scanner/internal/export"
	"fjacquet/statement-scanner/internal/extraction"
	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"
	"fjacquet/statement-scanner/internal/report"
	"fjacquet/statement-scanner/internal/scanerror"
	"fjacquet/statement-scanner/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *extraction.Result {
	total := decimal.RequireFromString("45.50")
	return &extraction.Result{
		StartDate:      "Dec. 26",
		EndDate:        "Jan. 19",
		StatementTotal: &total,
		Transactions: []extraction.RawTransaction{
			{Date: "Dec. 27", Description: "NETFLIX.COM", CardLast4: "1234", Amount: decimal.RequireFromString("15.50"), Category: models.CategoryOther},
			{Date: "Dec. 28", Description: `Cafe "Central"`, CardLast4: "1234", Amount: decimal.RequireFromString("30"), Category: models.CategoryDining},
		},
	}
}

type testServer struct {
	handler http.Handler
	session *session.Session
	gateway *extraction.MockGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gateway := &extraction.MockGateway{Result: sampleResult()}
	logger := logging.NewDiscardLogger()
	sess := session.New(session.Options{Gateway: gateway, Logger: logger, Timeout: time.Second})
	h := NewHandler(sess, report.NewGenerator(logger), 1<<20, logger)
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return &testServer{
		handler: NewServer(":0", h, logger).Handler,
		session: sess,
		gateway: gateway,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) upload(t *testing.T, name, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/statement", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) analyze(t *testing.T) {
	t.Helper()
	rr := s.upload(t, "statement.pdf", "application/pdf", []byte("%PDF-1.7"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rr)["status"])
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
}

func TestUpload(t *testing.T) {
	t.Run("pdf is analyzed", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.upload(t, "statement.pdf", "application/pdf", []byte("%PDF-1.7"))

		require.Equal(t, http.StatusOK, rr.Code)
		snap := decode[session.Snapshot](t, rr)
		assert.Equal(t, models.StateAnalyzed, snap.State)
		assert.Equal(t, "statement.pdf", snap.FileName)
		assert.Equal(t, 2, snap.TransactionCount)
		require.NotNil(t, snap.Reconciliation)
		assert.True(t, snap.Reconciliation.Reconciled)
	})

	t.Run("generic content type falls back to extension", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.upload(t, "statement.pdf", "application/octet-stream", []byte("%PDF-1.7"))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("non pdf is rejected", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.upload(t, "photo.png", "image/png", []byte("png"))

		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
		assert.Equal(t, scanerror.MsgInvalidDocument, decode[map[string]string](t, rr)["error"])
		assert.Empty(t, s.gateway.Calls())
		assert.Equal(t, models.StateIdle, s.session.State())
	})

	t.Run("extraction failure", func(t *testing.T) {
		s := newTestServer(t)
		s.gateway.Result = nil
		s.gateway.Err = errors.New("quota exceeded")

		rr := s.upload(t, "statement.pdf", "application/pdf", []byte("%PDF-1.7"))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, scanerror.MsgExtractionFailed, decode[map[string]string](t, rr)["error"])
		assert.Equal(t, models.StateError, s.session.State())

		rr = s.do(t, http.MethodPost, "/api/retry", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, models.StateIdle, s.session.State())
	})

	t.Run("second upload conflicts", func(t *testing.T) {
		s := newTestServer(t)
		s.analyze(t)

		rr := s.upload(t, "statement.pdf", "application/pdf", []byte("%PDF-1.7"))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		s := newTestServer(t)
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("other", "x"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/statement", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := httptest.NewRecorder()

		s.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("too large", func(t *testing.T) {
		s := newTestServer(t)

		rr := s.upload(t, "statement.pdf", "application/pdf", bytes.Repeat([]byte("x"), 2<<20))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Empty(t, s.gateway.Calls())
	})
}

func TestUpload_NoGateway(t *testing.T) {
	logger := logging.NewDiscardLogger()
	sess := session.New(session.Options{Logger: logger})
	handler := NewServer(":0", NewHandler(sess, report.NewGenerator(logger), 1<<20, logger), logger).Handler
	s := &testServer{handler: handler, session: sess}

	rr := s.upload(t, "statement.pdf", "application/pdf", []byte("%PDF-1.7"))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestResetRequiresAnalyzed(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/reset", nil).Code)

	s.analyze(t)
	rr := s.do(t, http.MethodPost, "/api/reset", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.StateIdle, decode[session.Snapshot](t, rr).State)
}

func TestTransactions(t *testing.T) {
	s := newTestServer(t)
	s.analyze(t)

	type listResponse struct {
		Transactions []models.ResolvedTransaction `json:"transactions"`
		Count        int                          `json:"count"`
	}

	rr := s.do(t, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	all := decode[listResponse](t, rr)
	require.Equal(t, 2, all.Count)
	assert.Equal(t, models.CategoryEntertainment, all.Transactions[0].EffectiveCategory)

	rr = s.do(t, http.MethodGet, "/api/transactions?search=central", nil)
	assert.Equal(t, 1, decode[listResponse](t, rr).Count)

	id := all.Transactions[1].ID
	rr = s.do(t, http.MethodPut, "/api/transactions/"+id+"/category", map[string]string{"category": "Business"})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(t, http.MethodGet, "/api/transactions?search=central", nil)
	tx := decode[listResponse](t, rr).Transactions[0]
	assert.Equal(t, models.CategoryBusiness, tx.EffectiveCategory)
	assert.Equal(t, models.SourceManual, tx.Source)

	rr = s.do(t, http.MethodPut, "/api/transactions/missing/category", map[string]string{"category": "Business"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSummary(t *testing.T) {
	s := newTestServer(t)
	s.analyze(t)

	rr := s.do(t, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	summary := decode[report.Summary](t, rr)
	assert.Equal(t, 2, summary.TransactionCount)
	assert.True(t, summary.TotalSpend.Equal(decimal.RequireFromString("45.5")))

	rr = s.do(t, http.MethodGet, "/api/summary?format=xml&search=netflix", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<summary>")
	assert.Contains(t, rr.Body.String(), "<search>netflix</search>")

	rr = s.do(t, http.MethodGet, "/api/summary?format=yaml", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExport(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/export", nil).Code)

	s.analyze(t)
	rr := s.do(t, http.MethodGet, "/api/export", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="statement_export_1700000000000.csv"`, rr.Header().Get("Content-Disposition"))

	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(body, export.BOM))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, export.BOM)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Description,Card,Category,Amount", lines[0])
	assert.Equal(t, `Dec. 27,"NETFLIX.COM",1234,Entertainment,15.50`, lines[1])
	assert.Equal(t, `Dec. 28,"Cafe ""Central""",1234,Dining,30.00`, lines[2])
}

func TestRules(t *testing.T) {
	s := newTestServer(t)
	s.analyze(t)

	rr := s.do(t, http.MethodPost, "/api/rules", map[string]string{"keyword": "cafe", "category": "Travel"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rule := decode[models.KeywordRule](t, rr)
	assert.NotEmpty(t, rule.ID)

	txs := s.session.Transactions("central")
	assert.Equal(t, models.CategoryTravel, txs[0].EffectiveCategory)

	rr = s.do(t, http.MethodPost, "/api/rules", map[string]string{"keyword": " ", "category": "Travel"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPut, "/api/rules/"+rule.ID, map[string]string{"keyword": "cafe", "category": "Gas"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.CategoryGas, s.session.Transactions("central")[0].EffectiveCategory)

	rr = s.do(t, http.MethodPut, "/api/rules/missing", map[string]string{"keyword": "x", "category": "Gas"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/rules/"+rule.ID+"/move", map[string]int{"position": 0})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, rule.ID, s.session.Rules()[0].ID)

	rr = s.do(t, http.MethodPost, "/api/rules/"+rule.ID+"/move", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodDelete, "/api/rules/"+rule.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(t, http.MethodDelete, "/api/rules/"+rule.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/rules", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(len(models.DefaultRules())), decode[map[string]interface{}](t, rr)["count"])
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Pets"})
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[models.CategoryConfig](t, rr)
	assert.Equal(t, "Pets", created.Name)
	assert.NotEqual(t, models.FallbackColor, created.Color)

	rr = s.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Pets"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPut, "/api/categories/Pets/color", map[string]string{"color": "rose"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "rose", s.session.ColorFor("Pets").ID)

	rr = s.do(t, http.MethodPut, "/api/categories/Pets/color", map[string]string{"color": "chartreuse"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPut, "/api/categories/Unknown/color", map[string]string{"color": "rose"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/categories", nil)
	assert.Equal(t, float64(len(models.DefaultCategoryConfigs())+1), decode[map[string]interface{}](t, rr)["count"])

	rr = s.do(t, http.MethodGet, "/api/palette", nil)
	assert.Len(t, decode[map[string][]models.CategoryColor](t, rr)["colors"], 22)
}

func TestMiddleware(t *testing.T) {
	t.Run("request id is propagated", func(t *testing.T) {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, "abc", seen)
		assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
	})

	t.Run("cors preflight", func(t *testing.T) {
		s := newTestServer(t)
		rr := s.do(t, http.MethodOptions, "/api/rules", nil)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("panic recovery", func(t *testing.T) {
		logger := logging.NewMockLogger()
		handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.True(t, logger.HasEntry("ERROR", "Panic recovered"))
	})

	t.Run("request logging", func(t *testing.T) {
		logger := logging.NewMockLogger()
		handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		entries := logger.GetEntriesByLevel("INFO")
		require.Len(t, entries, 1)
		assert.Equal(t, "HTTP request", entries[0].Message)
	})
}

func TestUploadIgnoresClientCancellation(t *testing.T) {
	s := newTestServer(t)
	s.gateway.ExtractFunc = func(ctx context.Context, doc extraction.Document) (*extraction.Result, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sampleResult(), nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "statement.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/statement", &buf).WithContext(ctx)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()

	s.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.StateAnalyzed, s.session.State())
}
