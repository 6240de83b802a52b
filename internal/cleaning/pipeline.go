package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"retailetl/internal/config"
	"retailetl/pkg/contracts/domain"
)

// Stage is one named step of the cleaning sequence. Stages are total over
// well-typed input: they filter rows, they never fail.
type Stage struct {
	Name  string
	Apply func([]domain.TransactionRecord) []domain.TransactionRecord
}

// Pipeline executes the fixed cleaning stage sequence over an in-memory
// record collection. Construct with New; the configuration is captured
// once and no stage reads ambient state.
type Pipeline struct {
	minUnitPrice float64
	minYear      int
	maxYear      int
	logger       *slog.Logger
	validate     *validator.Validate
}

// New creates a cleaning pipeline from the loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		minUnitPrice: cfg.Cleaning.MinUnitPrice,
		minYear:      cfg.Validation.MinYear,
		maxYear:      cfg.Validation.MaxYear,
		logger:       logger,
		validate:     validator.New(),
	}
}

// stages returns the ordered stage list. The order is part of the
// pipeline's contract: the price filter must precede duplicate
// aggregation, and the sort must precede both so first-occurrence
// selections are deterministic.
func (p *Pipeline) stages() []Stage {
	return []Stage{
		{Name: "sort_chronological", Apply: p.sortChronological},
		{Name: "filter_admin_codes", Apply: p.filterAdminCodes},
		{Name: "filter_low_prices", Apply: p.filterLowPrices},
		{Name: "aggregate_duplicates", Apply: p.filterDuplicates},
		{Name: "filter_zero_quantity", Apply: p.filterZeroQuantity},
		{Name: "filter_missing_customer", Apply: p.filterMissingCustomer},
		{Name: "compute_derived_fields", Apply: p.computeDerivedFields},
	}
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	stages := p.stages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}

// Run threads the record collection through the ordered stage list and
// returns the cleaned records together with per-stage audit counts.
// The input slice is copied once on entry; callers keep their data.
func (p *Pipeline) Run(ctx context.Context, records []domain.TransactionRecord) ([]domain.TransactionRecord, []domain.StageResult) {
	working := make([]domain.TransactionRecord, len(records))
	copy(working, records)

	started := time.Now()
	p.logger.InfoContext(ctx, "cleaning pipeline started",
		slog.Int("input_records", len(working)))

	results := make([]domain.StageResult, 0, len(p.stages()))
	for _, stage := range p.stages() {
		before := len(working)
		working = stage.Apply(working)
		removed := before - len(working)

		results = append(results, domain.StageResult{
			Stage:   stage.Name,
			Before:  before,
			After:   len(working),
			Removed: removed,
		})

		if removed > 0 {
			p.logger.InfoContext(ctx, "stage removed records",
				slog.String("stage", stage.Name),
				slog.Int("removed", removed),
				slog.Int("remaining", len(working)))
		}
	}

	p.logger.InfoContext(ctx, "cleaning pipeline finished",
		slog.Int("output_records", len(working)),
		slog.Duration("elapsed", time.Since(started)))

	return working, results
}

// Verify checks the pipeline's output invariants: every record carries a
// customer identity, a non-zero quantity, a price at or above the
// configured minimum, a non-administrative stock code, and valid struct
// fields. Returns the first violation found; a nil error means the
// dataset is analysis-ready.
func (p *Pipeline) Verify(records []domain.TransactionRecord) error {
	seen := make(map[domain.GroupKey]int, len(records))
	for i := range records {
		r := &records[i]
		if !r.HasCustomer() {
			return fmt.Errorf("record %d (invoice %s): missing customer id", i, r.Invoice)
		}
		if r.Quantity == 0 {
			return fmt.Errorf("record %d (invoice %s): zero quantity", i, r.Invoice)
		}
		if r.Price < p.minUnitPrice {
			return fmt.Errorf("record %d (invoice %s): price %.4f below minimum %.4f",
				i, r.Invoice, r.Price, p.minUnitPrice)
		}
		if IsAdministrativeCode(r.StockCode) {
			return fmt.Errorf("record %d (invoice %s): administrative stock code %q",
				i, r.Invoice, r.StockCode)
		}
		if prev, dup := seen[r.Key()]; dup {
			return fmt.Errorf("records %d and %d: duplicate group (invoice %s, stock %s)",
				prev, i, r.Invoice, r.StockCode)
		}
		seen[r.Key()] = i
		if err := p.validate.Struct(r); err != nil {
			return fmt.Errorf("record %d (invoice %s): %w", i, r.Invoice, err)
		}
	}
	return nil
}
