package export

import (
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/florahub/ecocrop-etl/internal/domain"
)

// renderMissingChart writes a standalone HTML bar chart of missing-cell
// counts per column, columns sorted by count descending so the worst
// offenders lead. Columns with no missing cells are omitted.
func renderMissingChart(path, title string, schema domain.Schema, counts domain.MissingValueCounts) error {
	type colCount struct {
		col string
		n   int
	}
	cols := make([]colCount, 0, len(counts))
	for col, n := range counts {
		if n > 0 {
			cols = append(cols, colCount{col, n})
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].n != cols[j].n {
			return cols[i].n > cols[j].n
		}
		return cols[i].col < cols[j].col
	})

	axis := make([]string, len(cols))
	values := make([]opts.BarData, len(cols))
	for i, c := range cols {
		axis[i] = c.col
		values[i] = opts.BarData{Value: c.n, Name: schema.DisplayName(c.col)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 60}}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	bar.SetXAxis(axis).AddSeries("missing cells", values)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bar.Render(f)
}
