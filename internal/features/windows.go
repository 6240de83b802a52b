package features

import (
	"log/slog"
	"time"

	apperrors "retailetl/internal/errors"
	"retailetl/pkg/contracts/domain"
)

// SplitByTimeWindow partitions transactions into the observation window
// (strictly before observationEnd) and the outcome window (at or after
// outcomeStart). Rows between the two bounds belong to neither.
func SplitByTimeWindow(records []domain.TransactionRecord, observationEnd, outcomeStart time.Time) (observation, outcome []domain.TransactionRecord) {
	for i := range records {
		switch {
		case records[i].InvoiceDate.Before(observationEnd):
			observation = append(observation, records[i])
		case !records[i].InvoiceDate.Before(outcomeStart):
			outcome = append(outcome, records[i])
		}
	}
	return observation, outcome
}

// CheckDataLeakage verifies there is no temporal overlap between the two
// windows. An overlap means features would be computed from the same
// period the label is derived from, which invalidates the model.
func CheckDataLeakage(logger *slog.Logger, observation, outcome []domain.TransactionRecord) error {
	if len(observation) == 0 || len(outcome) == 0 {
		return nil
	}

	obsMax := observation[0].InvoiceDate
	for i := range observation {
		if observation[i].InvoiceDate.After(obsMax) {
			obsMax = observation[i].InvoiceDate
		}
	}
	outcomeMin := outcome[0].InvoiceDate
	for i := range outcome {
		if outcome[i].InvoiceDate.Before(outcomeMin) {
			outcomeMin = outcome[i].InvoiceDate
		}
	}

	if !obsMax.Before(outcomeMin) {
		return apperrors.NewValidationError("temporal data leakage between observation and outcome windows").
			WithContext("observation_max", obsMax.Format(time.RFC3339)).
			WithContext("outcome_min", outcomeMin.Format(time.RFC3339))
	}

	logger.Info("no temporal data leakage detected",
		slog.Time("observation_max", obsMax),
		slog.Time("outcome_min", outcomeMin))
	return nil
}
