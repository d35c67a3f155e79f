package render

import (
	"bytes"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/palette"
)

func newTestFigure(t *testing.T) *Figure {
	t.Helper()
	red := color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	blue := color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	panel := &Panel{
		Title:    "GWAS",
		XLabel:   "contig",
		YLabel:   "-log10(p)",
		XTicks:   []Tick{{Value: 500, Label: "1"}, {Value: 1250, Label: "2"}},
		XRange:   &Range{Min: 0, Max: 1500},
		Tooltips: []string{"Variant", "Gene"},
		Points: []Point{
			{X: 100, Y: 8, Color: blue, Alpha: 1, Size: 6, Group: "1", Hover: []string{"rs1", "BRCA2"}},
			{X: 1050, Y: 2, Color: red, Alpha: 0.5, Size: 6, Group: "2", Hover: []string{"rs2", ""}},
		},
	}
	return &Figure{
		ID:          "0190a4f2-7c3e-7000-8000-000000000001",
		Title:       "test",
		Grid:        [][]*Panel{{panel}},
		PanelWidth:  300,
		PanelHeight: 200,
	}
}

func TestTargets(t *testing.T) {
	testCases := []struct {
		path string
		want []Format
	}{
		{"out/chart.png", []Format{FormatPNG}},
		{"chart.JPG", []Format{FormatJPEG}},
		{"chart.jpeg", []Format{FormatJPEG}},
		{"chart.svg", []Format{FormatSVG}},
		{"chart.pdf", []Format{FormatPDF}},
		{"chart.htm", []Format{FormatHTML}},
		{"chart", AllFormats},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			targets, err := Targets(tc.path)
			require.NoError(t, err)
			var got []Format
			for _, target := range targets {
				got = append(got, target.Format)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTargets_NoSuffixNames(t *testing.T) {
	targets, err := Targets("results/chart")
	require.NoError(t, err)
	var paths []string
	for _, target := range targets {
		paths = append(paths, target.Path)
	}
	assert.Equal(t, []string{
		"results/chart.png", "results/chart.jpeg", "results/chart.svg",
		"results/chart.pdf", "results/chart.html",
	}, paths)
}

func TestTargets_Unsupported(t *testing.T) {
	for _, path := range []string{"chart.gif", "chart.txt", "chart.v1"} {
		_, err := Targets(path)
		assert.True(t, errs.IsUnsupportedExportFormat(err), path)
	}
}

func TestFormatKind(t *testing.T) {
	assert.Equal(t, KindImage, FormatPNG.Kind())
	assert.Equal(t, KindImage, FormatJPEG.Kind())
	assert.Equal(t, KindVector, FormatSVG.Kind())
	assert.Equal(t, KindVector, FormatPDF.Kind())
	assert.Equal(t, KindMarkup, FormatHTML.Kind())
}

func TestSave_AllFormats(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "chart")

	written, err := Save(newTestFigure(t), base)
	require.NoError(t, err)
	require.Len(t, written, len(AllFormats))

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}

	png, err := os.ReadFile(base + ".png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	pdf, err := os.ReadFile(base + ".pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	svg, err := os.ReadFile(base + ".svg")
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestSave_UnsupportedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(newTestFigure(t), filepath.Join(dir, "chart.bmp"))
	require.True(t, errs.IsUnsupportedExportFormat(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(newTestFigure(t), &buf, FormatHTML))

	html := buf.String()
	assert.Contains(t, html, `id="fig0190a4f27c3e70008000000000000001"`)
	assert.Contains(t, html, "Variant: rs1, Gene: BRCA2")
	assert.Contains(t, html, "#1f77b4")
	assert.Contains(t, html, "<title>test</title>")
	assert.Contains(t, html, EchartsHost+"echarts.min.js")
	assert.NotContains(t, html, "__f__")
}

func TestWriteHTML_ContigTicks(t *testing.T) {
	fig := newTestFigure(t)
	fig.Grid[0][0].XTicks = []Tick{{Value: 500, Label: "CONTIGONE"}, {Value: 1500.5, Label: "CONTIGTWO"}}

	var buf bytes.Buffer
	require.NoError(t, Write(fig, &buf, FormatHTML))

	html := buf.String()
	assert.Contains(t, html, `"1500.5":"CONTIGTWO"`)
	assert.Contains(t, html, `"500":"CONTIGONE"`)
	assert.Contains(t, html, "customValues")
	assert.Contains(t, html, "goecharts_fig0190a4f27c3e70008000000000000001.setOption")
}

func TestWriteHTML_GridRows(t *testing.T) {
	fig := newTestFigure(t)
	second := *fig.Grid[0][0]
	second.XTicks = nil
	fig.Grid = [][]*Panel{{fig.Grid[0][0], &second}, {&second}}

	var buf bytes.Buffer
	require.NoError(t, Write(fig, &buf, FormatHTML))

	html := buf.String()
	// Two columns of 300px; a 40px title band above two rows of 200px.
	assert.Contains(t, html, "width:600px;height:440px;")
	assert.Contains(t, html, `{"left":"70px","top":"70px","width":"210px","height":"120px"}`)
	assert.Contains(t, html, `{"left":"370px","top":"70px","width":"210px","height":"120px"}`)
	assert.Contains(t, html, `{"left":"70px","top":"270px","width":"210px","height":"120px"}`)
	assert.Contains(t, html, `"xAxisIndex":2`)
	assert.Contains(t, html, `"gridIndex":2`)
}

func TestWriteHTML_ColorBar(t *testing.T) {
	fig := newTestFigure(t)
	viridis, err := palette.Lookup("Viridis256")
	require.NoError(t, err)
	fig.Legend = &Legend{Title: "age", ColorBar: &ColorBar{Map: viridis.Scale(10, 50)}}
	fig.Grid[0][0].Points[0].Value = 20
	fig.Grid[0][0].Points[1].Value = math.NaN()

	var buf bytes.Buffer
	require.NoError(t, Write(fig, &buf, FormatHTML))

	html := buf.String()
	assert.Contains(t, html, `"visualMap"`)
	assert.Contains(t, html, `"dimension":"2"`)
	assert.Contains(t, html, `"max":50`)
	assert.Contains(t, html, `"value":[100,8,20]`)
	assert.Contains(t, html, `"value":[1050,2]`)
	assert.Contains(t, html, `"inRange":{"color":["#`)
}

func TestWriteStatic_Grid(t *testing.T) {
	fig := newTestFigure(t)
	second := *fig.Grid[0][0]
	second.XTicks, second.XRange = nil, nil
	fig.Grid = [][]*Panel{{fig.Grid[0][0], &second}, {&second}}

	greys, err := palette.Lookup("Greys256")
	require.NoError(t, err)
	fig.Legend = &Legend{Title: "score", ColorBar: &ColorBar{Map: greys.Scale(0, 1)}}

	w, h := fig.Size()
	assert.Equal(t, (600+140)*pixel, w)
	assert.Equal(t, 400*pixel, h)

	var buf bytes.Buffer
	require.NoError(t, Write(fig, &buf, FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestWriteStatic_CategoricalLegendAndEmptyPanel(t *testing.T) {
	fig := newTestFigure(t)
	fig.Grid = append(fig.Grid, []*Panel{{Title: "empty"}})
	fig.Legend = &Legend{Title: "cohort", Entries: []LegendEntry{
		{Label: "A", Color: color.Black},
		{Label: "B", Color: color.White},
	}}

	var buf bytes.Buffer
	require.NoError(t, Write(fig, &buf, FormatSVG))
	assert.True(t, strings.Contains(buf.String(), "cohort"))
}

func TestChartID(t *testing.T) {
	assert.Equal(t, "figab12", chartID("ab-12"))
	assert.Equal(t, "fig", chartID(""))
}

func TestTickKey(t *testing.T) {
	assert.Equal(t, "124478211", tickKey(124478211))
	assert.Equal(t, "1500.5", tickKey(1500.5))
}

func TestHoverText(t *testing.T) {
	assert.Equal(t, "A: 1, B: ", hoverText([]string{"A", "B"}, []string{"1"}))
	assert.Equal(t, "", hoverText(nil, nil))
}

func TestWithAlpha(t *testing.T) {
	c := withAlpha(color.RGBA{R: 255, A: 255}, 0.5)
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, c)
	assert.Equal(t, uint8(255), withAlpha(nil, 2).A)
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.PanicsWithValue(t, "render: fixed figure ids exhausted after 2", func() { gen.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
