package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mealtrack/backend/internal/domain"
	"github.com/mealtrack/backend/internal/infrastructure/usda"
	"github.com/sirupsen/logrus"
)

// MinQueryLength is the shortest search string that triggers any lookup.
const MinQueryLength = 2

// tooShort counts characters, so a single accented letter is still one.
func tooShort(q string) bool {
	return utf8.RuneCountInString(q) < MinQueryLength
}

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	SearchLimit      int
	SearchPageSize   int
	MaxCandidates    int
	CandidateDelay   time.Duration
	CandidateTimeout time.Duration
}

// DefaultCatalogServiceConfig mirrors the configuration defaults.
func DefaultCatalogServiceConfig() CatalogServiceConfig {
	return CatalogServiceConfig{
		SearchLimit:      50,
		SearchPageSize:   15,
		MaxCandidates:    10,
		CandidateDelay:   50 * time.Millisecond,
		CandidateTimeout: 15 * time.Second,
	}
}

// ImportResult reports the outcome of one import run. Foods holds the local
// search results after the run, so callers still get data when the
// external source was unavailable.
type ImportResult struct {
	Query    string        `json:"query"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Foods    []domain.Food `json:"foods"`
}

// BulkImportResult aggregates several import runs.
type BulkImportResult struct {
	Queries       int `json:"queries"`
	FailedQueries int `json:"failed_queries"`
	Imported      int `json:"imported"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
}

// PopularFoods is the default query list for bulk imports.
var PopularFoods = []string{
	"chicken breast", "salmon", "tuna", "eggs", "greek yogurt", "cottage cheese", "tofu",
	"ground beef", "turkey", "shrimp",
	"brown rice", "quinoa", "oatmeal", "sweet potato", "banana", "apple", "bread", "pasta",
	"potato", "rice",
	"broccoli", "spinach", "kale", "carrots", "tomato", "bell pepper", "onion", "garlic",
	"cucumber", "lettuce",
	"avocado", "almonds", "walnuts", "olive oil", "peanut butter", "coconut oil", "chia seeds",
	"flax seeds",
	"milk", "cheese", "yogurt", "butter", "cream cheese",
	"orange", "strawberry", "blueberry", "grape", "pineapple", "mango", "watermelon", "peach",
	"black beans", "chickpeas", "lentils", "kidney beans", "pinto beans", "barley", "bulgur",
}

type candidateOutcome int

const (
	outcomeImported candidateOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// CatalogService searches the local food catalog and reconciles it with
// USDA FoodData Central.
type CatalogService struct {
	foods        domain.FoodStore
	usdaClient   domain.USDAClient
	preprocessor *QueryPreprocessor
	cfg          CatalogServiceConfig
	log          logrus.FieldLogger
	wait         func(ctx context.Context, d time.Duration) error
}

// NewCatalogService creates a catalog service. Zero config fields fall back
// to DefaultCatalogServiceConfig.
func NewCatalogService(foods domain.FoodStore, usdaClient domain.USDAClient, cfg CatalogServiceConfig, log logrus.FieldLogger) *CatalogService {
	def := DefaultCatalogServiceConfig()
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = def.SearchLimit
	}
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = def.SearchPageSize
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	if cfg.CandidateTimeout <= 0 {
		cfg.CandidateTimeout = def.CandidateTimeout
	}

	log = log.WithField("component", "catalog")
	return &CatalogService{
		foods:        foods,
		usdaClient:   usdaClient,
		preprocessor: NewQueryPreprocessor(log),
		cfg:          cfg,
		log:          log,
		wait:         sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SearchCatalog returns local foods whose name or brand contains query.
// Queries shorter than MinQueryLength return an empty result without any
// lookup. USDA is never consulted.
func (s *CatalogService) SearchCatalog(ctx context.Context, query string) ([]domain.Food, error) {
	q := strings.TrimSpace(query)
	if tooShort(q) {
		return []domain.Food{}, nil
	}
	return s.foods.Find(ctx, q, s.cfg.SearchLimit)
}

func (s *CatalogService) GetFood(ctx context.Context, id string) (*domain.Food, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: food id is required", domain.ErrValidation)
	}
	return s.foods.Get(ctx, id)
}

// ImportFromExternal imports the top USDA matches for query into the local
// catalog. Existing foods are skipped and failing candidates are logged and
// counted, so repeated runs converge to zero imports. When USDA search
// fails the result is returned together with ErrUpstreamUnavailable.
func (s *CatalogService) ImportFromExternal(ctx context.Context, identity domain.Identity, query string) (*ImportResult, error) {
	if _, err := domain.RequireUser(identity); err != nil {
		return nil, err
	}

	result, err := s.importQuery(ctx, query, s.cfg.MaxCandidates)
	if result == nil {
		return nil, err
	}

	foods, findErr := s.SearchCatalog(ctx, result.Query)
	if findErr != nil {
		s.log.WithError(findErr).Warn("local search after import failed")
		foods = []domain.Food{}
	}
	result.Foods = foods
	return result, err
}

// BulkImport runs an import for every query with perQuery candidates each.
// A query whose search fails is logged and counted; the run continues.
func (s *CatalogService) BulkImport(ctx context.Context, queries []string, perQuery int) (*BulkImportResult, error) {
	if perQuery <= 0 {
		perQuery = s.cfg.MaxCandidates
	}

	total := &BulkImportResult{}
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		total.Queries++
		res, err := s.importQuery(ctx, q, perQuery)
		if res != nil {
			total.Imported += res.Imported
			total.Skipped += res.Skipped
			total.Failed += res.Failed
		}
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			total.FailedQueries++
			s.log.WithError(err).WithField("query", q).Warn("bulk import query failed")
			continue
		}

		s.log.WithFields(logrus.Fields{
			"query":    q,
			"imported": res.Imported,
			"skipped":  res.Skipped,
			"failed":   res.Failed,
		}).Info("bulk import query done")
	}
	return total, nil
}

func (s *CatalogService) importQuery(ctx context.Context, query string, maxCandidates int) (*ImportResult, error) {
	q := strings.TrimSpace(query)
	result := &ImportResult{Query: q}
	if tooShort(q) {
		return result, nil
	}

	search, err := s.usdaClient.SearchFoods(ctx, s.preprocessor.PreprocessQuery(q), s.cfg.SearchPageSize)
	if errors.Is(err, domain.ErrProductNotFound) {
		return result, nil
	}
	if err != nil {
		s.log.WithError(err).WithField("query", q).Warn("usda search failed")
		return result, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	candidates := search.Foods
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	for i := range candidates {
		if i > 0 {
			if err := s.wait(ctx, s.cfg.CandidateDelay); err != nil {
				return result, err
			}
		}

		switch s.importCandidate(ctx, &candidates[i]) {
		case outcomeImported:
			result.Imported++
		case outcomeSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}

	s.log.WithFields(logrus.Fields{
		"query":    q,
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	}).Info("import finished")
	return result, nil
}

func (s *CatalogService) importCandidate(ctx context.Context, candidate *domain.USDAFood) candidateOutcome {
	entry := s.log.WithFields(logrus.Fields{"fdc_id": candidate.FdcID, "name": candidate.Description})

	name := strings.TrimSpace(candidate.Description)
	if name == "" {
		entry.Warn("candidate without description")
		return outcomeFailed
	}

	exists, err := s.alreadyCataloged(ctx, candidate.FdcID, name, usda.ResolveBrand(candidate))
	if err != nil {
		entry.WithError(err).Warn("existence check failed")
		return outcomeFailed
	}
	if exists {
		return outcomeSkipped
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.CandidateTimeout)
	defer cancel()

	detail, err := s.usdaClient.GetFoodDetails(cctx, candidate.FdcID)
	if err != nil {
		entry.WithError(err).Warn("detail fetch failed")
		return outcomeFailed
	}
	mergeCandidate(detail, candidate)

	food := usda.MapToFood(detail)
	if err := s.foods.Insert(cctx, food); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return outcomeSkipped
		}
		entry.WithError(err).Warn("insert failed")
		return outcomeFailed
	}

	entry.WithField("food_id", food.ID).Debug("imported")
	return outcomeImported
}

func (s *CatalogService) alreadyCataloged(ctx context.Context, fdcID int64, name, brand string) (bool, error) {
	if fdcID > 0 {
		_, err := s.foods.FindByFdcID(ctx, fdcID)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
	}

	_, err := s.foods.FindByNameBrand(ctx, name, brand)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// mergeCandidate fills identity fields the detail payload left out from the
// search result, so the stored name and brand match the existence check.
func mergeCandidate(detail, candidate *domain.USDAFood) {
	if detail.FdcID == 0 {
		detail.FdcID = candidate.FdcID
	}
	detail.Description = candidate.Description
	if detail.BrandOwner == "" && detail.BrandName == "" {
		detail.BrandOwner = candidate.BrandOwner
		detail.BrandName = candidate.BrandName
	}
	if detail.ServingSize <= 0 && candidate.ServingSize > 0 {
		detail.ServingSize = candidate.ServingSize
		detail.ServingSizeUnit = candidate.ServingSizeUnit
	}
}
