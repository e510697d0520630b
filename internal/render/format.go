// Package render turns numeric results into display tables and echarts
// pages. This is the only place numbers become formatted strings; nothing
// here ever feeds back into arithmetic.
package render

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"shipcast/internal/aggregate"
)

// NotAvailable is rendered whenever a growth percentage is undefined.
const NotAvailable = "N/A"

// FormatCount renders a volume total as a rounded integer with thousands
// separators.
func FormatCount(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// FormatGrowth renders a growth percentage with two decimals, or N/A when
// undefined.
func FormatGrowth(pct float64, defined bool) string {
	if !defined {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// Table is the display variant of a result set: all strings, formatted.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ResultTable formats numeric result rows into a display table. Key parts
// are split across the given key headers; shorter keys (such as the Total
// row) leave trailing key cells blank.
func ResultTable(results []aggregate.Result, keyHeaders []string, refHeader, forecastHeader string) Table {
	headers := make([]string, 0, len(keyHeaders)+3)
	headers = append(headers, keyHeaders...)
	headers = append(headers, refHeader, forecastHeader, "Growth %")

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		row := make([]string, 0, len(headers))
		for i := 0; i < len(keyHeaders); i++ {
			if i < len(res.Key.Parts) {
				row = append(row, res.Key.Parts[i])
			} else {
				row = append(row, "")
			}
		}
		row = append(row,
			FormatCount(res.ReferenceTotal),
			FormatCount(res.ForecastTotal),
			FormatGrowth(res.GrowthPercent, res.GrowthDefined),
		)
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}
}
