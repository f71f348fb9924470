package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/vrptw/core/vrptw"
)

// WriteChart renders an HTML page with one stacked bar per route: travel
// distance, service time, wait time and penalty cost.
func WriteChart(w io.Writer, res *vrptw.Result) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Route cost breakdown",
			Subtitle: fmt.Sprintf("%s formulation, objective %.3f (%s)", res.Variant, res.Objective, res.Status),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Vehicle"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Time units"}),
	)

	var (
		xAxis                            []string
		distance, service, wait, penalty []opts.BarData
	)
	for _, r := range res.Routes {
		xAxis = append(xAxis, fmt.Sprintf("vehicle %d", r.Vehicle))
		distance = append(distance, opts.BarData{Value: r.Distance})
		service = append(service, opts.BarData{Value: r.Service})
		wait = append(wait, opts.BarData{Value: r.Wait})
		penalty = append(penalty, opts.BarData{Value: r.Penalty})
	}
	bar.SetXAxis(xAxis).
		AddSeries("Distance", distance, charts.WithBarChartOpts(opts.BarChart{Stack: "cost"})).
		AddSeries("Service", service, charts.WithBarChartOpts(opts.BarChart{Stack: "cost"})).
		AddSeries("Wait", wait, charts.WithBarChartOpts(opts.BarChart{Stack: "cost"})).
		AddSeries("Penalty", penalty, charts.WithBarChartOpts(opts.BarChart{Stack: "cost"}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
