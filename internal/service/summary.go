package service

import (
	"context"
	"io"

	"github.com/guttosm/tradesummary/internal/cache"
	"github.com/guttosm/tradesummary/internal/domain/models"
	"github.com/guttosm/tradesummary/internal/ingestion"
	"github.com/guttosm/tradesummary/internal/logger"
	"github.com/guttosm/tradesummary/internal/storage"
)

// SummaryService defines business logic for reading and computing summaries.
type SummaryService interface {
	GetSummary(ctx context.Context, symbol string) (*models.Summary, error)
	ListSummaries(ctx context.Context) ([]models.Summary, error)
	Summarize(ctx context.Context, r io.Reader, opts ingestion.Options) (*ingestion.Result, error)
}

type summaryService struct {
	repo  storage.SummaryRepository
	cache cache.SummaryCache // optional
}

// NewSummaryService wires the repository and an optional cache (nil disables caching).
func NewSummaryService(repo storage.SummaryRepository, c cache.SummaryCache) SummaryService {
	return &summaryService{repo: repo, cache: c}
}

// GetSummary reads through the cache. Cache failures are logged and fall back
// to the repository; they never fail the request.
func (s *summaryService) GetSummary(ctx context.Context, symbol string) (*models.Summary, error) {
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, symbol)
		if err != nil {
			logger.L().Warn().Err(err).Str("symbol", symbol).Msg("cache get failed")
		} else if hit != nil {
			return hit, nil
		}
	}

	out, err := s.repo.GetSummaryBySymbol(symbol)
	if err != nil || out == nil {
		return out, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, *out); err != nil {
			logger.L().Warn().Err(err).Str("symbol", symbol).Msg("cache set failed")
		}
	}
	return out, nil
}

func (s *summaryService) ListSummaries(_ context.Context) ([]models.Summary, error) {
	return s.repo.ListSummaries()
}

// Summarize computes a table from an uploaded trade stream without storing it.
func (s *summaryService) Summarize(ctx context.Context, r io.Reader, opts ingestion.Options) (*ingestion.Result, error) {
	return ingestion.SummarizeParallel(ctx, r, opts)
}
