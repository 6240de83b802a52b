package features

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retailetl/pkg/contracts/domain"
)

func reportFixture() *domain.FeatureSet {
	return &domain.FeatureSet{
		RunID: "run-1",
		Customers: []domain.CustomerFeatures{
			{
				CustomerID: 100, Recency: 10, Frequency: 4,
				MonetaryNet: 200.0, MonetaryGross: 250.0,
				NReturnInvoices: 1, ReturnRate: 0.25, HasReturns: true,
				Churned: 0,
			},
			{
				CustomerID: 200, Recency: 120, Frequency: 2,
				MonetaryNet: -50.0, MonetaryGross: 30.0,
				ReturnRate: 0.5, NReturnInvoices: 1, HasReturns: true,
				Churned: 1,
			},
			{
				CustomerID: 300, Recency: 60, Frequency: 6,
				MonetaryNet: 600.0, MonetaryGross: 600.0,
				Churned: 1,
			},
		},
	}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(reportFixture())

	assert.Equal(t, 3, report.Customers)
	assert.Equal(t, 18, report.Features)

	assert.Equal(t, 10, report.RecencyMin)
	assert.Equal(t, 120, report.RecencyMax)
	assert.InDelta(t, 190.0/3, report.RecencyMean, 1e-9)

	assert.Equal(t, 2, report.FrequencyMin)
	assert.Equal(t, 6, report.FrequencyMax)
	assert.InDelta(t, 4.0, report.FrequencyMean, 1e-9)

	assert.InDelta(t, -50.0, report.MonetaryNetMin, 1e-9)
	assert.InDelta(t, 600.0, report.MonetaryNetMax, 1e-9)
	assert.InDelta(t, 250.0, report.MonetaryNetMean, 1e-9)
	assert.InDelta(t, 30.0, report.MonetaryGrossMin, 1e-9)

	assert.Equal(t, 2, report.Churned)
	assert.Equal(t, 1, report.Retained)
	assert.InDelta(t, 200.0/3, report.ChurnRate, 1e-9)

	assert.Equal(t, 2, report.CustomersWithReturns)
	assert.InDelta(t, 0.25, report.AvgReturnRate, 1e-9)

	assert.Equal(t, 1, report.SerialReturners)
	assert.InDelta(t, 100.0/3, report.SerialReturnerRate, 1e-9)
}

func TestReportFormat(t *testing.T) {
	out := BuildReport(reportFixture()).Format()

	assert.Contains(t, out, "FEATURE ENGINEERING REPORT")
	assert.Contains(t, out, "3 customers x 18 features")
	assert.Contains(t, out, "Churned (1): 2 (66.7%)")
	assert.Contains(t, out, "Customers with negative net value: 1")
}

func TestReportFormatEmpty(t *testing.T) {
	out := BuildReport(&domain.FeatureSet{}).Format()

	assert.Contains(t, out, "No eligible customers")
}
