package http

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"kopilka/internal/core"
)

// renderCategoryDonut renders the ranked expense breakdown as a donut chart.
// Caller must ensure the summary has at least one expense category.
func renderCategoryDonut(sum core.MonthSummary) ([]byte, error) {
	values := make([]chart.Value, 0, len(sum.Ranked))
	for _, ca := range sum.Ranked {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s ₽)", ca.Category, ca.Amount.FormatWhole()),
			Value: float64(ca.Amount.Cents) / 100,
		})
	}

	donut := chart.DonutChart{
		Title:  fmt.Sprintf("%04d-%02d", sum.Year, sum.Month),
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := donut.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render donut chart: %w", err)
	}
	return buf.Bytes(), nil
}
