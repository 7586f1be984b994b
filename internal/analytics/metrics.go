package analytics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"sheetdash/internal/model"
)

// ColumnMetric is the sum and average of the numeric values of one column.
type ColumnMetric struct {
	Sum float64 `json:"sum"`
	Avg float64 `json:"avg"`
}

// ColumnMetrics computes per-column metrics over numeric values only.
// It returns nil for no rows. Columns are taken from the first row and a column
// without numeric values gets no entry.
func ColumnMetrics(rows []model.Row) map[string]ColumnMetric {
	if len(rows) == 0 {
		return nil
	}

	out := make(map[string]ColumnMetric)
	for col := range rows[0] {
		values := make([]float64, 0, len(rows))
		for _, row := range rows {
			if v, ok := row[col]; ok && v.IsNumber() {
				values = append(values, v.Num)
			}
		}
		if len(values) == 0 {
			continue
		}
		sum := floats.Sum(values)
		out[col] = ColumnMetric{Sum: sum, Avg: sum / float64(len(values))}
	}
	return out
}

// Prompt describes the metrics for the narrative collaborator.
func Prompt(metrics map[string]ColumnMetric) string {
	var b strings.Builder
	b.WriteString("The uploaded Excel data contains the following columns and summary statistics:\n\n")
	for _, col := range sortedKeys(metrics) {
		m := metrics[col]
		fmt.Fprintf(&b, "- %s: total %.2f, average %.2f\n", col, m.Sum, m.Avg)
	}
	b.WriteString("\nPlease provide a brief, insightful summary based on these statistics.")
	return b.String()
}

func sortedKeys(m map[string]ColumnMetric) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
