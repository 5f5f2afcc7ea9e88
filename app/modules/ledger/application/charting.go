package ledgerservice

import (
	"context"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors used by the debt chart.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Text       drawing.Color
}

// DefaultPalette is used by RenderDebtChart.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("ffffff"),
	Bar:        drawing.ColorFromHex("b03a2e"),
	Text:       drawing.ColorFromHex("1c2833"),
}

// RenderDebtChart writes a PNG bar chart of season totals.
func (s *LedgerService) RenderDebtChart(ctx context.Context, w io.Writer) error {
	table, err := s.SeasonDebtTable(ctx)
	if err != nil {
		return err
	}
	return GenerateDebtChart(w, table, DefaultPalette)
}

// GenerateDebtChart renders one bar per player in table order. A season
// without any debt renders a placeholder image instead.
func GenerateDebtChart(w io.Writer, table SeasonTable, palette ChartPalette) error {
	hasDebt := false
	bars := make([]chart.Value, 0, len(table.Rows))
	for _, row := range table.Rows {
		if row.Total > 0 {
			hasDebt = true
		}
		bars = append(bars, chart.Value{
			Label: row.DisplayName,
			Value: float64(row.Total),
			Style: chart.Style{
				FillColor:   palette.Bar,
				StrokeColor: palette.Bar,
			},
		})
	}
	if !hasDebt {
		return renderNoDataPlaceholder(w, palette)
	}

	width := 120 + 60*len(bars)
	if width < 480 {
		width = 480
	}
	graph := chart.BarChart{
		Title:    "Season debt",
		Width:    width,
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		TitleStyle: chart.Style{
			FontColor: palette.Text,
		},
		XAxis: chart.Style{
			FontColor:           palette.Text,
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.Text,
			},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

func renderNoDataPlaceholder(w io.Writer, palette ChartPalette) error {
	const (
		width  = 400
		height = 200
		msg    = "No debt recorded yet"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	return graph.Render(chart.PNG, w)
}
