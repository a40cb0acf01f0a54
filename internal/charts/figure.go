package charts

import "visit-dashboard/internal/models"

// Figure is the JSON shape Plotly.react expects.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type string    `json:"type"`
	Mode string    `json:"mode,omitempty"`
	Name string    `json:"name,omitempty"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y,omitempty"`
}

type Text struct {
	Text string `json:"text"`
}

type AxisLayout struct {
	Title     Text      `json:"title"`
	TickMode  string    `json:"tickmode,omitempty"`
	TickVals  []float64 `json:"tickvals,omitempty"`
	TickText  []string  `json:"ticktext,omitempty"`
	GridColor string    `json:"gridcolor,omitempty"`
}

type Font struct {
	Color string `json:"color"`
}

type Layout struct {
	Title        Text       `json:"title"`
	Height       int        `json:"height"`
	XAxis        AxisLayout `json:"xaxis"`
	YAxis        AxisLayout `json:"yaxis"`
	PaperBGColor string     `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string     `json:"plot_bgcolor,omitempty"`
	Font         *Font      `json:"font,omitempty"`
}

// Plotly.js has no named templates, so the dark theme is spelled out.
const (
	darkBackground = "rgb(17,17,17)"
	darkGrid       = "#283442"
	darkFont       = "#f2f5fa"
)

// NewFigure converts spec into a Plotly figure. Histograms hand the raw
// values to Plotly, which does its own binning in the browser.
func NewFigure(spec models.ChartSpec) Figure {
	var trace Trace
	switch spec.Kind {
	case models.ChartHistogram:
		trace = Trace{Type: "histogram", X: nonNil(spec.Values)}
	default:
		x := make([]float64, 0, len(spec.Points))
		y := make([]float64, 0, len(spec.Points))
		for _, p := range spec.Points {
			x = append(x, p.X)
			y = append(y, p.Y)
		}
		trace = Trace{Type: "scatter", Mode: "lines", X: x, Y: y}
	}

	layout := Layout{
		Title:  Text{Text: spec.Title},
		Height: spec.Height,
		XAxis:  AxisLayout{Title: Text{Text: spec.XAxis.Title}},
		YAxis:  AxisLayout{Title: Text{Text: spec.YField}},
	}
	if len(spec.XAxis.TickVals) > 0 {
		layout.XAxis.TickMode = "array"
		layout.XAxis.TickVals = spec.XAxis.TickVals
		layout.XAxis.TickText = spec.XAxis.TickText
	}
	if spec.Template == DarkTemplate {
		layout.PaperBGColor = darkBackground
		layout.PlotBGColor = darkBackground
		layout.Font = &Font{Color: darkFont}
		layout.XAxis.GridColor = darkGrid
		layout.YAxis.GridColor = darkGrid
	}

	return Figure{Data: []Trace{trace}, Layout: layout}
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
