package models

type ChartKind string

const (
	ChartLine      ChartKind = "line"
	ChartHistogram ChartKind = "histogram"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bin is a half-open histogram interval [Start, End).
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Axis overrides the automatic tick placement when TickVals is set.
type Axis struct {
	Title    string    `json:"title,omitempty"`
	TickVals []float64 `json:"tick_vals,omitempty"`
	TickText []string  `json:"tick_text,omitempty"`
}

// ChartSpec describes a chart independently of the library that draws it.
// Line charts use Points; histograms use Values and the Bins derived from
// them.
type ChartSpec struct {
	Kind     ChartKind `json:"kind"`
	Title    string    `json:"title"`
	XField   string    `json:"x_field"`
	YField   string    `json:"y_field,omitempty"`
	Points   []Point   `json:"points"`
	Values   []float64 `json:"values"`
	Bins     []Bin     `json:"bins"`
	XAxis    Axis      `json:"x_axis"`
	Template string    `json:"template"`
	Height   int       `json:"height"`
}
