package features

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"retailetl/internal/config"
	apperrors "retailetl/internal/errors"
	"retailetl/pkg/contracts/domain"
)

// Engineer builds the customer feature table from a cleaned dataset.
type Engineer struct {
	cfg      config.FeaturesConfig
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates a feature engineer from the pipeline configuration.
func New(cfg *config.Config, logger *slog.Logger) *Engineer {
	return &Engineer{
		cfg:      cfg.Features,
		logger:   logger,
		validate: validator.New(),
	}
}

// Build computes one feature row per eligible customer. The input must
// be cleaned data: every record carries a customer ID and derived
// fields. The returned set is sorted by customer ID.
func (e *Engineer) Build(ctx context.Context, dataset *domain.CleanedDataset) (*domain.FeatureSet, error) {
	observationEnd, err := e.cfg.ObservationEndDate()
	if err != nil {
		return nil, apperrors.NewConfigError("invalid observation_end", err)
	}
	outcomeStart, err := e.cfg.OutcomeStartDate()
	if err != nil {
		return nil, apperrors.NewConfigError("invalid outcome_start", err)
	}

	observation, outcome := SplitByTimeWindow(dataset.Records, observationEnd, outcomeStart)
	e.logger.InfoContext(ctx, "transactions split into windows",
		slog.Int("observation", len(observation)),
		slog.Int("outcome", len(outcome)))

	if err := CheckDataLeakage(e.logger, observation, outcome); err != nil {
		return nil, err
	}

	eligible, cohort := eligibleCustomers(observation, observationEnd, e.cfg.MinTenureDays, e.cfg.MinFrequency)
	e.logger.InfoContext(ctx, "cohort eligibility applied",
		slog.Int("total_customers", cohort.Total),
		slog.Int("eligible", cohort.Eligible),
		slog.Int("filtered_out", cohort.FilteredOut),
		slog.Int("tenure_failed", cohort.TenureFailed),
		slog.Int("frequency_failed", cohort.FrequencyFailed),
		slog.Int("both_failed", cohort.BothFailed))

	// Drop observation rows for ineligible customers before any metric
	// is computed.
	kept := observation[:0]
	for i := range observation {
		if eligible[observation[i].CustomerIDValue()] {
			kept = append(kept, observation[i])
		}
	}
	observation = kept

	byCustomer := accumulate(observation)
	retained := purchaseCustomers(outcome)

	set := &domain.FeatureSet{
		RunID:       dataset.RunID,
		GeneratedAt: time.Now().UTC(),
		Customers:   make([]domain.CustomerFeatures, 0, len(byCustomer)),
	}

	churned := 0
	for _, id := range sortedCustomerIDs(byCustomer) {
		f := byCustomer[id].features(id, observationEnd)
		if !retained[id] {
			f.Churned = 1
			churned++
		}
		set.Customers = append(set.Customers, f)
	}

	churnRate := 0.0
	if len(set.Customers) > 0 {
		churnRate = float64(churned) / float64(len(set.Customers))
	}
	e.logger.InfoContext(ctx, "churn labels defined",
		slog.Int("churned", churned),
		slog.Float64("churn_rate", churnRate))

	e.runQualityChecks(ctx, set)

	return set, nil
}

// purchaseCustomers collects the customers who made at least one new
// purchase in the outcome window. Returns alone do not count as
// retention.
func purchaseCustomers(outcome []domain.TransactionRecord) map[int64]bool {
	retained := make(map[int64]bool)
	for i := range outcome {
		if outcome[i].Quantity > 0 {
			retained[outcome[i].CustomerIDValue()] = true
		}
	}
	return retained
}

// runQualityChecks validates feature distributions. Findings are logged,
// not fatal; the table is still written so the problem can be inspected.
func (e *Engineer) runQualityChecks(ctx context.Context, set *domain.FeatureSet) {
	negativeNet := 0
	for i := range set.Customers {
		f := &set.Customers[i]

		if f.Recency < 0 {
			e.logger.ErrorContext(ctx, "negative recency detected",
				slog.Int64("customer_id", f.CustomerID),
				slog.Int("recency", f.Recency))
		}
		if f.MonetaryGross < 0 {
			e.logger.ErrorContext(ctx, "negative monetary_gross detected",
				slog.Int64("customer_id", f.CustomerID))
		}
		if f.MonetaryNet < 0 {
			negativeNet++
		}

		if err := e.validate.Struct(f); err != nil {
			e.logger.ErrorContext(ctx, "feature row failed validation",
				slog.Int64("customer_id", f.CustomerID),
				slog.String("error", err.Error()))
		}
	}

	if negativeNet > 0 {
		e.logger.InfoContext(ctx, "customers with negative net monetary",
			slog.Int("count", negativeNet))
	}
}
