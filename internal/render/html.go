package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ArashLab/caplot/internal/palette"
)

// EchartsHost serves the echarts build loaded by HTML output. Tick labels
// at arbitrary coordinates need axis customValues, added in echarts 5.5.1.
const EchartsHost = "https://cdn.jsdelivr.net/npm/echarts@5.5.1/dist/"

// Cell margins around each panel's plotting area, in pixels.
const (
	cellLeft   = 70
	cellRight  = 20
	cellTop    = 30
	cellBottom = 50

	titleHeight  = 40
	legendPixels = 140
	colorBarStop = 16
)

// writeHTML renders the figure as a self-contained echarts page. Every
// panel gets its own grid inside one canvas, placed by its row and column
// in f.Grid, so the page keeps the figure's layout whatever the window
// width.
func writeHTML(f *Figure, w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = f.Title
	if page.PageTitle == "" {
		page.PageTitle = "caplot"
	}
	page.AssetsHost = EchartsHost
	page.SetLayout(components.PageCenterLayout)
	page.AddCharts(figureChart(f))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// chartID derives a JavaScript-safe element id from the figure id.
func chartID(figureID string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return -1
	}, figureID)
	return "fig" + id
}

// seriesKey groups points that share a legend group and style.
type seriesKey struct {
	group string
	color string
	alpha float64
}

// cell is the pixel rectangle of one panel's plotting area.
type cell struct {
	left, top, width, height int
}

func (f *Figure) cell(r, c int) cell {
	top := r * f.PanelHeight
	if f.Title != "" {
		top += titleHeight
	}
	return cell{
		left:   c*f.PanelWidth + cellLeft,
		top:    top + cellTop,
		width:  max(f.PanelWidth-cellLeft-cellRight, 1),
		height: max(f.PanelHeight-cellTop-cellBottom, 1),
	}
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}

// tickKey formats a tick coordinate the way JavaScript's String(number)
// does for the values an axis reports.
func tickKey(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func figureChart(f *Figure) *charts.Scatter {
	sc := charts.NewScatter()

	width := f.Columns() * f.PanelWidth
	height := len(f.Grid) * f.PanelHeight
	if f.Title != "" {
		height += titleHeight
	}
	if f.Legend != nil {
		width += legendPixels
	}

	id := chartID(f.ID)
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    id,
			Width:      px(max(width, 1)),
			Height:     px(max(height, 1)),
			AssetsHost: EchartsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: f.Title, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(legendOpts(f.Legend)),
	}
	if f.Legend != nil && f.Legend.ColorBar != nil {
		global = append(global, charts.WithVisualMapOpts(visualMapOpts(f.Legend)))
	}

	var grids []opts.Grid
	var customTicks []map[string]string
	k := 0
	for r, row := range f.Grid {
		for c, panel := range row {
			cl := f.cell(r, c)
			grids = append(grids, opts.Grid{
				Left:   px(cl.left),
				Top:    px(cl.top),
				Width:  px(cl.width),
				Height: px(cl.height),
			})

			xAxis, ticks := panelXAxis(panel, k)
			yAxis := opts.YAxis{
				Name:         panel.YLabel,
				NameLocation: "middle",
				NameGap:      cellLeft - 20,
				Type:         "value",
				Scale:        opts.Bool(true),
				GridIndex:    k,
				SplitLine:    &opts.SplitLine{Show: opts.Bool(panel.ShowGrid)},
			}
			if k == 0 {
				global = append(global, charts.WithXAxisOpts(xAxis), charts.WithYAxisOpts(yAxis))
			} else {
				sc.ExtendXAxis(xAxis)
				sc.ExtendYAxis(yAxis)
			}
			customTicks = append(customTicks, ticks)

			addPanelSeries(sc, f, panel, k)
			k++
		}
	}
	global = append(global, charts.WithGridOpts(grids...))
	sc.SetGlobalOptions(global...)

	if js := customTicksJS(customTicks); js != "" {
		sc.AddJSFuncStrs(opts.FuncOpts(js))
	}
	return sc
}

// panelXAxis builds the x axis of panel k, plus the label of every
// explicit tick keyed by tickKey. The labels are nil without ticks.
func panelXAxis(panel *Panel, k int) (opts.XAxis, map[string]string) {
	xAxis := opts.XAxis{
		Name:         panel.XLabel,
		NameLocation: "middle",
		NameGap:      cellBottom - 20,
		Type:         "value",
		Scale:        opts.Bool(true),
		GridIndex:    k,
		SplitLine:    &opts.SplitLine{Show: opts.Bool(panel.ShowGrid)},
	}
	if panel.XRange != nil {
		xAxis.Min, xAxis.Max = panel.XRange.Min, panel.XRange.Max
	}
	if len(panel.XTicks) == 0 {
		return xAxis, nil
	}
	labels := make(map[string]string, len(panel.XTicks))
	for _, t := range panel.XTicks {
		labels[tickKey(t.Value)] = t.Label
	}
	return xAxis, labels
}

// customTicksJS places labels and ticks exactly at the explicit tick
// coordinates of each x axis. It returns "" when no axis has any.
func customTicksJS(axes []map[string]string) string {
	found := false
	for _, a := range axes {
		if a != nil {
			found = true
		}
	}
	if !found {
		return ""
	}
	encoded, err := json.Marshal(axes)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`(function () {
	var ticks = %s;
	%%MY_ECHARTS%%.setOption({xAxis: ticks.map(function (t) {
		if (!t) { return {}; }
		var values = Object.keys(t).map(Number);
		return {
			axisLabel: {customValues: values, formatter: function (v) { var l = t[String(v)]; return l === undefined ? '' : l; }},
			axisTick: {customValues: values}
		};
	})});
})();`, encoded)
}

// addPanelSeries adds one scatter series per style group of panel k.
func addPanelSeries(sc *charts.Scatter, f *Figure, panel *Panel, k int) {
	colorBar := f.Legend != nil && f.Legend.ColorBar != nil

	var order []seriesKey
	data := make(map[seriesKey][]opts.ScatterData)
	for _, pt := range panel.Points {
		key := seriesKey{group: pt.Group, color: palette.Hex(withAlpha(pt.Color, 1)), alpha: pt.Alpha}
		if _, ok := data[key]; !ok {
			order = append(order, key)
		}
		value := []interface{}{pt.X, pt.Y}
		if colorBar && !math.IsNaN(pt.Value) {
			value = append(value, pt.Value)
		}
		data[key] = append(data[key], opts.ScatterData{
			Name:       hoverText(panel.Tooltips, pt.Hover),
			Value:      value,
			SymbolSize: int(math.Max(1, math.Round(pt.Size))),
		})
	}
	for _, key := range order {
		sc.AddSeries(key.group, data[key],
			charts.WithSeriesOpts(func(s *charts.SingleSeries) {
				s.XAxisIndex = k
				s.YAxisIndex = k
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:   key.color,
				Opacity: float32(key.alpha),
			}),
		)
	}
}

func legendOpts(l *Legend) opts.Legend {
	if l == nil || len(l.Entries) == 0 {
		return opts.Legend{Show: opts.Bool(false)}
	}
	names := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		names[i] = e.Label
	}
	return opts.Legend{
		Show:   opts.Bool(true),
		Orient: "vertical",
		Right:  "10px",
		Top:    "middle",
		Data:   names,
	}
}

// visualMapOpts maps the third value dimension of every point through the
// color bar's palette.
func visualMapOpts(l *Legend) opts.VisualMap {
	cm := l.ColorBar.Map
	stops := cm.Palette(colorBarStop).Colors()
	colors := make([]string, len(stops))
	for i, c := range stops {
		colors[i] = palette.Hex(withAlpha(c, 1))
	}
	return opts.VisualMap{
		Type:       "continuous",
		Calculable: opts.Bool(true),
		Min:        float32(cm.Min()),
		Max:        float32(cm.Max()),
		Dimension:  "2",
		Text:       []string{l.Title},
		Orient:     "vertical",
		Right:      "10px",
		Top:        "middle",
		InRange:    &opts.VisualMapInRange{Color: colors},
	}
}

// hoverText joins label/value pairs into the tooltip name of a point.
func hoverText(labels, values []string) string {
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts = append(parts, label+": "+v)
	}
	return strings.Join(parts, ", ")
}
