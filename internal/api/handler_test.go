package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradesummary/internal/domain/dto"
	"github.com/guttosm/tradesummary/internal/domain/models"
	"github.com/guttosm/tradesummary/internal/ingestion"
	"github.com/guttosm/tradesummary/internal/service"
)

type mockSummaryService struct {
	sum     *models.Summary
	list    []models.Summary
	err     error
	gotSym  string
	gotOpts ingestion.Options
}

func (m *mockSummaryService) GetSummary(_ context.Context, symbol string) (*models.Summary, error) {
	m.gotSym = symbol
	return m.sum, m.err
}

func (m *mockSummaryService) ListSummaries(_ context.Context) ([]models.Summary, error) {
	return m.list, m.err
}

// Summarize runs the real pipeline so handler tests cover error mapping end to end.
func (m *mockSummaryService) Summarize(ctx context.Context, r io.Reader, opts ingestion.Options) (*ingestion.Result, error) {
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return ingestion.Summarize(ctx, r, opts)
}

var _ service.SummaryService = (*mockSummaryService)(nil)

func setupRouterWithMock(s service.SummaryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s)
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/summaries", h.ListSummaries)
	v1.GET("/summaries/:symbol", h.GetSummary)
	v1.POST("/summarize", h.Summarize)
	return r
}

var aaa = models.Summary{Symbol: "aaa", MaxGap: 3, Volume: 3, WeightedAveragePrice: 1, MaxPrice: 3}

func TestGetSummary_TableDriven(t *testing.T) {
	cases := []struct {
		name    string
		svc     *mockSummaryService
		path    string
		status  int
		wantSym string
	}{
		{name: "not found", svc: &mockSummaryService{}, path: "/api/v1/summaries/zzz", status: http.StatusNotFound, wantSym: "zzz"},
		{name: "internal error", svc: &mockSummaryService{err: errors.New("db down")}, path: "/api/v1/summaries/aaa", status: http.StatusInternalServerError, wantSym: "aaa"},
		{name: "success", svc: &mockSummaryService{sum: &aaa}, path: "/api/v1/summaries/aaa", status: http.StatusOK, wantSym: "aaa"},
		{name: "case preserved", svc: &mockSummaryService{}, path: "/api/v1/summaries/AaA", status: http.StatusNotFound, wantSym: "AaA"},
		{name: "numeric symbol", svc: &mockSummaryService{}, path: "/api/v1/summaries/123", status: http.StatusNotFound, wantSym: "123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.svc.gotSym != tc.wantSym {
				t.Fatalf("symbol passed to service: %q want %q", tc.svc.gotSym, tc.wantSym)
			}
			if tc.status == http.StatusOK {
				var out dto.SummaryResponse
				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.Symbol != "aaa" || out.MaxGap != 3 || out.WeightedAveragePrice != 1 {
					t.Fatalf("unexpected body: %+v", out)
				}
			}
		})
	}
}

func TestListSummaries_TableDriven(t *testing.T) {
	cases := []struct {
		name      string
		svc       *mockSummaryService
		status    int
		wantCount int
	}{
		{name: "empty", svc: &mockSummaryService{list: []models.Summary{}}, status: http.StatusOK, wantCount: 0},
		{name: "rows", svc: &mockSummaryService{list: []models.Summary{aaa, {Symbol: "bbb", Volume: 2, WeightedAveragePrice: 2, MaxPrice: 2}}}, status: http.StatusOK, wantCount: 2},
		{name: "error", svc: &mockSummaryService{err: errors.New("db down")}, status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/summaries", nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.status != http.StatusOK {
				return
			}
			var out dto.SummariesResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Count != tc.wantCount || len(out.Summaries) != tc.wantCount {
				t.Fatalf("unexpected body: %+v", out)
			}
		})
	}
}

func TestSummarize_TableDriven(t *testing.T) {
	cases := []struct {
		name      string
		svc       *mockSummaryService
		query     string
		body      string
		status    int
		wantCount int
	}{
		{name: "scenario", svc: &mockSummaryService{}, body: "1,aaa,1,0\n2,aaa,1,1\n2,bbb,2,2\n5,aaa,1,3\n", status: http.StatusOK, wantCount: 2},
		{name: "empty body", svc: &mockSummaryService{}, body: "", status: http.StatusOK, wantCount: 0},
		{name: "semicolon with header", svc: &mockSummaryService{}, query: "?delimiter=%3B&header=true", body: "t;s;q;p\n1;aaa;1;1\n", status: http.StatusOK, wantCount: 1},
		{name: "empty symbol", svc: &mockSummaryService{}, body: "9,,1,1\n", status: http.StatusUnprocessableEntity},
		{name: "bad quantity", svc: &mockSummaryService{}, body: "10,ddd,large,10\n", status: http.StatusUnprocessableEntity},
		{name: "notional overflow", svc: &mockSummaryService{}, body: "1,big,10000000000,10000000000\n", status: http.StatusUnprocessableEntity},
		{name: "bad delimiter", svc: &mockSummaryService{}, query: "?delimiter=ab", body: "", status: http.StatusBadRequest},
		{name: "quote delimiter", svc: &mockSummaryService{}, query: "?delimiter=%22", body: "", status: http.StatusBadRequest},
		{name: "bad header flag", svc: &mockSummaryService{}, query: "?header=maybe", body: "", status: http.StatusBadRequest},
		{name: "read failure", svc: &mockSummaryService{err: errors.New("broken pipe")}, body: "1,aaa,1,1\n", status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize"+tc.query, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "text/csv")
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d body=%s", tc.status, w.Code, w.Body.String())
			}
			if tc.status != http.StatusOK {
				var e dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Message == "" {
					t.Fatalf("expected error body, got %s", w.Body.String())
				}
				return
			}
			var out dto.SummariesResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Count != tc.wantCount {
				t.Fatalf("count=%d want %d", out.Count, tc.wantCount)
			}
		})
	}
}

func TestSummarize_PayloadTooLarge(t *testing.T) {
	old := MaxUploadBytes
	MaxUploadBytes = 16
	t.Cleanup(func() { MaxUploadBytes = old })

	r := setupRouterWithMock(&mockSummaryService{})
	w := httptest.NewRecorder()
	body := strings.Repeat("1,aaa,1,1\n", 10)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/summarize", strings.NewReader(body)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}
