package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/motion.review/internal/imu"
)

var groupColors = map[string][3]string{
	"accelerometer": {"#ff5252", "#ffb74d", "#fff176"},
	"gyroscope":     {"#4fc3f7", "#4dd0e1", "#81c784"},
	"magnetometer":  {"#ba68c8", "#f06292", "#a1887f"},
}

// WriteHTML renders the three channel-group charts as a standalone HTML page
// with the visible x-range set to the window around referenceTime and a
// playhead mark line on each chart. The full point set is always plotted;
// only the axis bounds express the window.
func WriteHTML(w io.Writer, series *imu.Series, referenceTime float64) error {
	if series.Len() == 0 {
		return fmt.Errorf("no dataset loaded")
	}

	start, end := Window(referenceTime)
	page := components.NewPage()
	page.PageTitle = "IMU Review"

	for _, g := range Groups {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "320px"}),
			charts.WithTitleOpts(opts.Title{
				Title:    g.Name,
				Subtitle: fmt.Sprintf("window=[%.2fs, %.2fs] playhead=%.3fs samples=%d", start, end, referenceTime, series.Len()),
			}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: start, Max: end, Name: "t (s)", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: g.Name}),
		)

		colors := groupColors[g.Name]
		for i, ch := range g.Channels {
			values := series.Channel(ch)
			data := make([]opts.LineData, series.Len())
			for j := range values {
				data[j] = opts.LineData{Value: []interface{}{series.Times[j], values[j]}}
			}
			line.AddSeries(ch, data,
				charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: colors[i]}),
				charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{Name: "playhead", XAxis: referenceTime}),
			)
		}
		page.AddCharts(line)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}
