package visual

import (
	"bytes"
	"fmt"
	"math"

	"carlo/internal/mc"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"

	chartWidthPx  = 1200
	chartHeightPx = 640
)

// 留样路径的调色板，超出后循环使用。
var pathPalette = []string{
	"#3b82f6", "#34d399", "#fbbf24", "#f472b6", "#22d3ee",
	"#a78bfa", "#fb7185", "#f87171", "#4ade80", "#facc15",
}

// PathChartInput 描述一张留样路径图。
type PathChartInput struct {
	Title    string
	Subtitle string
	Paths    []mc.Path
}

// RenderPaths 把留样路径画成一张 echarts 折线图，返回完整 HTML。
func RenderPaths(input PathChartInput) ([]byte, error) {
	if len(input.Paths) == 0 {
		return nil, fmt.Errorf("没有可绘制的路径")
	}

	minLevel, maxLevel := levelBounds(input.Paths)
	padding := (maxLevel - minLevel) * 0.05
	if padding <= 0 {
		padding = math.Max(1, math.Abs(maxLevel)*0.01)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         input.Title,
			Subtitle:      input.Subtitle,
			Left:          "left",
			Top:           "10",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Name:      "t",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			Min:       round(minLevel-padding, 4),
			Max:       round(maxLevel+padding, 4),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)

	line.SetXAxis(buildXAxis(input.Paths[0]))
	for i, p := range input.Paths {
		color := pathPalette[i%len(pathPalette)]
		line.AddSeries(fmt.Sprintf("path_%d", i), toLineData(p.Levels),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1.5}),
		)
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(line)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("渲染路径图失败: %w", err)
	}
	return buf.Bytes(), nil
}

func buildXAxis(p mc.Path) []string {
	out := make([]string, len(p.Times))
	for i, t := range p.Times {
		out[i] = fmt.Sprintf("%.4g", t)
	}
	return out
}

func toLineData(levels []float64) []opts.LineData {
	out := make([]opts.LineData, len(levels))
	for i, v := range levels {
		out[i] = opts.LineData{Value: round(v, 6)}
	}
	return out
}

func round(val float64, decimals int) float64 {
	factor := math.Pow10(decimals)
	return math.Round(val*factor) / factor
}

func levelBounds(paths []mc.Path) (minVal, maxVal float64) {
	minVal = math.Inf(1)
	maxVal = math.Inf(-1)
	for _, p := range paths {
		for _, v := range p.Levels {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	return minVal, maxVal
}
