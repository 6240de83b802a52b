package features

import (
	"fmt"
	"strings"

	"retailetl/pkg/contracts/domain"
)

// featureCount is the number of columns in the exported feature table,
// customer_id included.
const featureCount = 18

// Report summarizes the engineered feature table for operators.
type Report struct {
	Customers int `json:"customers"`
	Features  int `json:"features"`

	RecencyMin    int     `json:"recency_min"`
	RecencyMax    int     `json:"recency_max"`
	RecencyMean   float64 `json:"recency_mean"`
	FrequencyMin  int     `json:"frequency_min"`
	FrequencyMax  int     `json:"frequency_max"`
	FrequencyMean float64 `json:"frequency_mean"`

	MonetaryNetMin    float64 `json:"monetary_net_min"`
	MonetaryNetMax    float64 `json:"monetary_net_max"`
	MonetaryNetMean   float64 `json:"monetary_net_mean"`
	MonetaryGrossMin  float64 `json:"monetary_gross_min"`
	MonetaryGrossMax  float64 `json:"monetary_gross_max"`
	MonetaryGrossMean float64 `json:"monetary_gross_mean"`

	Churned   int     `json:"churned"`
	Retained  int     `json:"retained"`
	ChurnRate float64 `json:"churn_rate"`

	CustomersWithReturns int     `json:"customers_with_returns"`
	ReturnCustomerRate   float64 `json:"return_customer_rate"`
	AvgReturnRate        float64 `json:"avg_return_rate"`

	SerialReturners    int     `json:"serial_returners"`
	SerialReturnerRate float64 `json:"serial_returner_rate"`
}

// BuildReport computes summary statistics over a feature set.
func BuildReport(set *domain.FeatureSet) *Report {
	report := &Report{
		Customers: len(set.Customers),
		Features:  featureCount,
	}
	if len(set.Customers) == 0 {
		return report
	}

	first := &set.Customers[0]
	report.RecencyMin, report.RecencyMax = first.Recency, first.Recency
	report.FrequencyMin, report.FrequencyMax = first.Frequency, first.Frequency
	report.MonetaryNetMin, report.MonetaryNetMax = first.MonetaryNet, first.MonetaryNet
	report.MonetaryGrossMin, report.MonetaryGrossMax = first.MonetaryGross, first.MonetaryGross

	var recencySum, frequencySum int
	var netSum, grossSum, returnRateSum float64
	for i := range set.Customers {
		f := &set.Customers[i]

		report.RecencyMin = min(report.RecencyMin, f.Recency)
		report.RecencyMax = max(report.RecencyMax, f.Recency)
		recencySum += f.Recency

		report.FrequencyMin = min(report.FrequencyMin, f.Frequency)
		report.FrequencyMax = max(report.FrequencyMax, f.Frequency)
		frequencySum += f.Frequency

		report.MonetaryNetMin = min(report.MonetaryNetMin, f.MonetaryNet)
		report.MonetaryNetMax = max(report.MonetaryNetMax, f.MonetaryNet)
		netSum += f.MonetaryNet

		report.MonetaryGrossMin = min(report.MonetaryGrossMin, f.MonetaryGross)
		report.MonetaryGrossMax = max(report.MonetaryGrossMax, f.MonetaryGross)
		grossSum += f.MonetaryGross

		if f.Churned == 1 {
			report.Churned++
		}
		if f.HasReturns {
			report.CustomersWithReturns++
		}
		returnRateSum += f.ReturnRate
		if f.MonetaryNet < 0 {
			report.SerialReturners++
		}
	}

	n := float64(len(set.Customers))
	report.Retained = report.Customers - report.Churned
	report.RecencyMean = float64(recencySum) / n
	report.FrequencyMean = float64(frequencySum) / n
	report.MonetaryNetMean = netSum / n
	report.MonetaryGrossMean = grossSum / n
	report.ChurnRate = float64(report.Churned) / n * 100
	report.ReturnCustomerRate = float64(report.CustomersWithReturns) / n * 100
	report.AvgReturnRate = returnRateSum / n
	report.SerialReturnerRate = float64(report.SerialReturners) / n * 100

	return report
}

// Format renders the report for terminal output.
func (r *Report) Format() string {
	var b strings.Builder
	banner := strings.Repeat("=", 77)

	b.WriteString("\n" + banner + "\n")
	b.WriteString("FEATURE ENGINEERING REPORT\n")
	b.WriteString(banner + "\n\n")

	if r.Customers == 0 {
		b.WriteString("No eligible customers in the observation window.\n")
		b.WriteString(banner + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Dataset Dimensions: %d customers x %d features\n\n", r.Customers, r.Features)

	b.WriteString("RFM Metrics:\n")
	fmt.Fprintf(&b, "  Recency (days): min=%d, max=%d, mean=%.1f\n", r.RecencyMin, r.RecencyMax, r.RecencyMean)
	fmt.Fprintf(&b, "  Frequency: min=%d, max=%d, mean=%.1f\n", r.FrequencyMin, r.FrequencyMax, r.FrequencyMean)
	fmt.Fprintf(&b, "  Monetary Net: min=%.2f, max=%.2f, mean=%.2f\n", r.MonetaryNetMin, r.MonetaryNetMax, r.MonetaryNetMean)
	fmt.Fprintf(&b, "  Monetary Gross: min=%.2f, max=%.2f, mean=%.2f\n\n", r.MonetaryGrossMin, r.MonetaryGrossMax, r.MonetaryGrossMean)

	b.WriteString("Churn Distribution:\n")
	fmt.Fprintf(&b, "  Churned (1): %d (%.1f%%)\n", r.Churned, r.ChurnRate)
	fmt.Fprintf(&b, "  Retained (0): %d (%.1f%%)\n\n", r.Retained, 100-r.ChurnRate)

	b.WriteString("Return Behavior:\n")
	fmt.Fprintf(&b, "  Customers with returns: %d (%.1f%%)\n", r.CustomersWithReturns, r.ReturnCustomerRate)
	fmt.Fprintf(&b, "  Average return rate: %.1f%%\n\n", r.AvgReturnRate*100)

	if r.SerialReturners > 0 {
		b.WriteString("Serial Returners:\n")
		fmt.Fprintf(&b, "  Customers with negative net value: %d (%.1f%%)\n\n", r.SerialReturners, r.SerialReturnerRate)
	}

	b.WriteString(banner + "\n")
	return b.String()
}
