package util

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"match-occupancy/analysis"
)

// Match in progress shading covers kick-off plus 105 minutes.
const matchDurationHours = 1.75

const DefaultPlotColor = "#1f77b4"

// PlotOptions controls how a match plot is drawn.
type PlotOptions struct {
	EventDate   time.Time
	Country     string
	KickoffHour int
	// Color of the match day line and baseline band.
	Color string
	// FixedYAxis pins the y axis to -2..90 so plots are comparable.
	FixedYAxis       bool
	ShowCountryLabel bool
	// FlagImage is the URL or path of the country flag.
	FlagImage string
}

func point(x, y float64) opts.LineData {
	return opts.LineData{Value: []interface{}{x, y}}
}

// RenderMatchPlot draws the match day curve against the baseline band and
// writes the chart as HTML to w.
func RenderMatchPlot(w io.Writer, curves analysis.Curves, o PlotOptions) error {
	if o.FlagImage == "" {
		return fmt.Errorf("%w: no flag configured for %q", analysis.ErrUnknownCountry, o.Country)
	}
	if o.KickoffHour < 0 || o.KickoffHour > 23 {
		return fmt.Errorf("%w: %d", analysis.ErrInvalidReferenceHour, o.KickoffHour)
	}
	color := o.Color
	if color == "" {
		color = DefaultPlotColor
	}

	line := charts.NewLine()

	title := opts.Title{Title: o.EventDate.Format("Monday 2 January 2006")}
	if o.ShowCountryLabel {
		title.Subtitle = "Gyms in " + o.Country
	}

	yAxis := opts.YAxis{
		Type:      "value",
		Name:      "Occupancy",
		AxisLabel: &opts.AxisLabel{Formatter: "{value}%"},
	}
	if o.FixedYAxis {
		yAxis.Min = -2
		yAxis.Max = 90
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s %s", o.Country, o.EventDate.Format("2006-01-02")),
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(title),
		charts.WithXAxisOpts(opts.XAxis{
			Type:        "value",
			Name:        "Hour",
			Min:         0,
			Max:         24,
			SplitNumber: 12,
		}),
		charts.WithYAxisOpts(yAxis),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	var lower, width, mean []opts.LineData
	for _, p := range curves.Baseline {
		lower = append(lower, point(p.Hour, p.Lower))
		width = append(width, point(p.Hour, p.Upper-p.Lower))
		mean = append(mean, point(p.Hour, p.Mean))
	}
	var match []opts.LineData
	for _, p := range curves.Match {
		match = append(match, point(p.Hour, p.Occupancy))
	}

	// the band is the CI width stacked on an invisible lower bound
	line.AddSeries("Baseline 95% CI lower", lower,
		charts.WithLineChartOpts(opts.LineChart{Stack: "ci", ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Opacity: opts.Float(0)}),
	)
	line.AddSeries("Baseline 95% CI", width,
		charts.WithLineChartOpts(opts.LineChart{Stack: "ci", ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Opacity: opts.Float(0)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: color, Opacity: opts.Float(0.2)}),
	)
	line.AddSeries("Weeks 1-6 mean", mean,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1, Opacity: opts.Float(0.6)}),
	)

	kickoff := float64(o.KickoffHour)
	line.AddSeries("Match day", match,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2, Type: "dashed"}),
		charts.WithMarkAreaNameCoordItemOpts(opts.MarkAreaNameCoordItem{
			Name:        "Match in progress",
			Coordinate0: []interface{}{kickoff, "min"},
			Coordinate1: []interface{}{kickoff + matchDurationHours, "max"},
			ItemStyle:   &opts.ItemStyle{Color: "#999999", Opacity: opts.Float(0.25)},
		}),
	)

	flagY := 80.0
	if !o.FixedYAxis {
		flagY = maxOccupancy(curves) * 0.95
	}
	line.AddSeries(o.Country, []opts.LineData{{
		Name:       o.Country,
		Value:      []interface{}{1.5, flagY},
		Symbol:     "image://" + o.FlagImage,
		SymbolSize: 40,
	}})

	return line.Render(w)
}

func maxOccupancy(curves analysis.Curves) float64 {
	top := 0.0
	for _, p := range curves.Baseline {
		if p.Upper > top {
			top = p.Upper
		}
	}
	for _, p := range curves.Match {
		if p.Occupancy > top {
			top = p.Occupancy
		}
	}
	return top
}
