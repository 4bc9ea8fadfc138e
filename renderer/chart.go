package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	trader "github.com/thuva4/am-i-bad-trader"
	"github.com/thuva4/am-i-bad-trader/date"
)

// ValueChartPNG renders the daily holdings value against the money put in.
// Two series: market value (blue solid) and cumulative net invested (gray
// dashed). Returns raw PNG bytes.
func ValueChartPNG(series *trader.ValueSeries) ([]byte, error) {
	if series == nil || series.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 value points, got %d", seriesLen(series))
	}

	xValues := make([]time.Time, series.Len())
	valueY := make([]float64, series.Len())
	investedY := make([]float64, series.Len())
	invested := 0.0
	for i := range series.Days {
		xValues[i] = dayTime(series.Days[i])
		valueY[i] = series.Values[i]
		invested += series.Flows[i]
		investedY[i] = invested
	}

	graph := chart.Chart{
		Title:  "Holdings Value",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Market Value",
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2.5,
				},
				XValues: xValues,
				YValues: valueY,
			},
			chart.TimeSeries{
				Name: "Net Invested",
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("9ca3af"),
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{5.0, 3.0},
				},
				XValues: xValues,
				YValues: investedY,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func seriesLen(s *trader.ValueSeries) int {
	if s == nil {
		return 0
	}
	return s.Len()
}

func dayTime(d date.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
