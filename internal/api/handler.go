package api

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradesummary/internal/aggregator"
	"github.com/guttosm/tradesummary/internal/domain/dto"
	"github.com/guttosm/tradesummary/internal/domain/models"
	"github.com/guttosm/tradesummary/internal/ingestion"
	"github.com/guttosm/tradesummary/internal/middleware"
	"github.com/guttosm/tradesummary/internal/service"
)

// MaxUploadBytes caps the CSV body accepted by POST /api/v1/summarize.
var MaxUploadBytes int64 = 32 << 20

// Handler provides HTTP handlers for trade summary endpoints.
//
// Responsibilities:
//   - Validate incoming path/query parameters
//   - Call the service layer for stored or freshly computed summaries
//   - Translate results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc service.SummaryService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.SummaryService) *Handler {
	return &Handler{svc: svc}
}

// GetSummary handles GET /api/v1/summaries/:symbol requests.
//
// Symbols are opaque: the path value is used exactly as sent (no case folding
// or trimming), since "AAA" and "aaa" are different instruments.
//
// GetSummary godoc
// @Summary      Get summary by symbol
// @Description  Returns the stored summary of the most recent run containing the symbol
// @Tags         summaries
// @Produce      json
// @Param        symbol  path      string  true  "Instrument symbol" example(aaa)
// @Success      200     {object}  dto.SummaryResponse  "Success"
// @Failure      404     {object}  dto.ErrorResponse    "Not Found"
// @Failure      500     {object}  dto.ErrorResponse    "Internal Error"
// @Router       /api/v1/summaries/{symbol} [get]
func (h *Handler) GetSummary(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, "symbol is required", nil)
		return
	}

	s, err := h.svc.GetSummary(c.Request.Context(), symbol)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch summary", err)
		return
	}
	if s == nil {
		middleware.AbortWithError(c, http.StatusNotFound, "no data found", nil)
		return
	}

	c.JSON(http.StatusOK, toResponse(*s))
}

// ListSummaries handles GET /api/v1/summaries requests.
//
// ListSummaries godoc
// @Summary      List summaries
// @Description  Returns the full table of the most recent run, ordered by symbol
// @Tags         summaries
// @Produce      json
// @Success      200  {object}  dto.SummariesResponse  "Success"
// @Failure      500  {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/summaries [get]
func (h *Handler) ListSummaries(c *gin.Context) {
	rows, err := h.svc.ListSummaries(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch summaries", err)
		return
	}
	c.JSON(http.StatusOK, toTable(rows))
}

// Summarize handles POST /api/v1/summarize requests.
//
// The body is a trade CSV (timestamp, symbol, quantity, price). The table is
// computed on the fly and not stored.
//
// Query Parameters:
//   - delimiter (string, optional): single-character field delimiter. Default ",".
//   - header (bool, optional): skip the first row.
//
// Summarize godoc
// @Summary      Summarize an uploaded trade file
// @Description  Folds the uploaded trades into per-symbol summaries without persisting them
// @Tags         summaries
// @Accept       text/csv
// @Produce      json
// @Param        delimiter  query     string  false  "Field delimiter" example(,)
// @Param        header     query     bool    false  "Skip the first row"
// @Success      200        {object}  dto.SummariesResponse  "Success"
// @Failure      400        {object}  dto.ErrorResponse      "Bad Request"
// @Failure      413        {object}  dto.ErrorResponse      "Payload Too Large"
// @Failure      422        {object}  dto.ErrorResponse      "Invalid trade row"
// @Router       /api/v1/summarize [post]
func (h *Handler) Summarize(c *gin.Context) {
	opts := ingestion.DefaultOptions()

	if d := c.Query("delimiter"); d != "" {
		r, size := utf8.DecodeRuneInString(d)
		if size != len(d) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid delimiter, expected a single character", nil)
			return
		}
		opts.Comma = r
	}
	if hs := c.Query("header"); hs != "" {
		v, err := strconv.ParseBool(hs)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid header flag, expected true or false", err)
			return
		}
		opts.Header = v
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
	res, err := h.svc.Summarize(c.Request.Context(), body, opts)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			middleware.AbortWithError(c, http.StatusRequestEntityTooLarge, "payload too large", err)
		case errors.Is(err, aggregator.ErrInvalidSymbol), errors.Is(err, aggregator.ErrInvalidField),
			errors.Is(err, aggregator.ErrOverflow):
			middleware.AbortWithError(c, http.StatusUnprocessableEntity, "invalid trade row", err)
		default:
			middleware.AbortWithError(c, http.StatusBadRequest, "failed to read trades", err)
		}
		return
	}

	c.JSON(http.StatusOK, toTable(res.Rows))
}

func toResponse(s models.Summary) dto.SummaryResponse {
	return dto.SummaryResponse{
		Symbol:               s.Symbol,
		MaxGap:               s.MaxGap,
		Volume:               s.Volume,
		WeightedAveragePrice: s.WeightedAveragePrice,
		MaxPrice:             s.MaxPrice,
	}
}

func toTable(rows []models.Summary) dto.SummariesResponse {
	out := dto.SummariesResponse{Count: len(rows), Summaries: make([]dto.SummaryResponse, 0, len(rows))}
	for _, r := range rows {
		out.Summaries = append(out.Summaries, toResponse(r))
	}
	return out
}
