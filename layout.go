package main

import "math"

// Page geometry in PDF points (1/72 inch), A4
const (
	a4Width  = 595.28
	a4Height = 841.89
)

// LayoutConfig holds the geometry constants of the two-page report
type LayoutConfig struct {
	PageWidth          float64 // portrait width; landscape swaps width and height
	PageHeight         float64
	Margin             float64
	HeaderBandHeight   float64
	TickStep           float64 // value-axis spacing in EUR
	MaxTimeLabels      int     // at most this many year labels fit under the chart
	ShowEquityRatio    bool
	MinYearColumnWidth float64
	TableTop           float64 // baseline of the table header text
	TableHeaderHeight  float64
	TableRowHeight     float64
	ChartTop           float64
	ChartLeftGutter    float64 // room for value-axis labels left of the chart box
	ChartHeight        float64
	LegendOffset       float64 // distance from the chart bottom to the legend
}

// DefaultLayoutConfig returns the geometry of the exported PDF
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PageWidth:          a4Width,
		PageHeight:         a4Height,
		Margin:             32,
		HeaderBandHeight:   64,
		TickStep:           50000,
		MaxTimeLabels:      6,
		ShowEquityRatio:    true,
		MinYearColumnWidth: 60,
		TableTop:           240,
		TableHeaderHeight:  22,
		TableRowHeight:     20,
		ChartTop:           130,
		ChartLeftGutter:    72,
		ChartHeight:        300,
		LegendOffset:       50,
	}
}

// maxValueTicks bounds the value axis; larger ranges get a wider tick step
const maxValueTicks = 40

// ColumnKind identifies the content of a table column
type ColumnKind int

const (
	ColumnYear ColumnKind = iota
	ColumnBalance
	ColumnContributions
	ColumnEquityRatio
)

// Align is a horizontal text alignment
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// cellPadding is the inset of left- and right-aligned cell text
const cellPadding = 8

// TableColumn is one column of the yearly table
type TableColumn struct {
	Kind  ColumnKind
	X     float64
	Width float64
	Align Align
}

// TextX returns the anchor x for text in this column
func (c TableColumn) TextX() float64 {
	switch c.Align {
	case AlignCenter:
		return c.X + c.Width/2
	case AlignRight:
		return c.X + c.Width - cellPadding
	default:
		return c.X + cellPadding
	}
}

// TableLayout is the geometry of the page-one table
type TableLayout struct {
	X            float64
	Y            float64 // header text baseline
	Width        float64
	HeaderHeight float64
	RowHeight    float64
	BodyTop      float64
	Rows         int
	Columns      []TableColumn
}

// RowTop returns the y of the separator line above row i
func (t TableLayout) RowTop(i int) float64 {
	return t.BodyTop + float64(i)*t.RowHeight
}

// AxisTick is one labelled value on the vertical axis
type AxisTick struct {
	Value float64
	Y     float64
}

// TimeLabel is one labelled year on the horizontal axis
type TimeLabel struct {
	Index int
	Year  int
	X     float64
}

// ChartPoint is a point in page coordinates
type ChartPoint struct {
	X float64
	Y float64
}

// ChartLayout is the geometry of the page-two chart
type ChartLayout struct {
	X           float64
	Y           float64
	Width       float64
	Height      float64
	MinValue    float64
	MaxValue    float64
	TickStep    float64 // value spacing of ValueTicks, the configured step unless widened
	ScaleX      float64 // horizontal distance between consecutive points
	ScaleY      float64 // points per EUR
	LabelStride int
	ValueTicks  []AxisTick
	TimeLabels  []TimeLabel
	Balance     []ChartPoint
	Savings     []ChartPoint
	LegendY     float64
}

// PageSize is a page width and height in points
type PageSize struct {
	Width  float64
	Height float64
}

// ReportLayout is the complete, target-independent geometry of the report
type ReportLayout struct {
	Portrait  PageSize
	Landscape PageSize
	Margin    float64
	Table     TableLayout
	Chart     ChartLayout
}

// ComputeLayout derives table and chart geometry from the yearly points only
func ComputeLayout(points []ProjectionPoint, cfg LayoutConfig) ReportLayout {
	portrait := PageSize{Width: cfg.PageWidth, Height: cfg.PageHeight}
	landscape := PageSize{Width: cfg.PageHeight, Height: cfg.PageWidth}

	return ReportLayout{
		Portrait:  portrait,
		Landscape: landscape,
		Margin:    cfg.Margin,
		Table:     layoutTable(len(points), portrait, cfg),
		Chart:     layoutChart(points, landscape, cfg),
	}
}

// TableColumnWidths splits the table width into year / balance / contributions (/ equity) columns.
// The year column gets 8% but never less than minYear; the rest share the residual space.
func TableColumnWidths(tableWidth, minYear float64, withEquity bool) []float64 {
	yearW := math.Max(minYear, tableWidth*0.08)
	residual := tableWidth - yearW

	if !withEquity {
		balanceW := math.Round(residual * 0.45)
		return []float64{yearW, balanceW, residual - balanceW}
	}

	balanceW := tableWidth * 0.30
	savingsW := tableWidth * 0.30
	equityW := tableWidth - yearW - balanceW - savingsW
	if equityW < 0 {
		// Minimum year width ate the remainder, split the residual evenly instead
		balanceW = residual / 3
		savingsW = residual / 3
		equityW = residual - balanceW - savingsW
	}
	return []float64{yearW, balanceW, savingsW, equityW}
}

func layoutTable(rows int, page PageSize, cfg LayoutConfig) TableLayout {
	width := page.Width - cfg.Margin*2
	widths := TableColumnWidths(width, cfg.MinYearColumnWidth, cfg.ShowEquityRatio)

	kinds := []ColumnKind{ColumnYear, ColumnBalance, ColumnContributions, ColumnEquityRatio}
	aligns := []Align{AlignLeft, AlignCenter, AlignRight, AlignRight}

	columns := make([]TableColumn, len(widths))
	x := cfg.Margin
	for i, w := range widths {
		columns[i] = TableColumn{Kind: kinds[i], X: x, Width: w, Align: aligns[i]}
		x += w
	}

	return TableLayout{
		X:            cfg.Margin,
		Y:            cfg.TableTop,
		Width:        width,
		HeaderHeight: cfg.TableHeaderHeight,
		RowHeight:    cfg.TableRowHeight,
		BodyTop:      cfg.TableTop + cfg.TableHeaderHeight + 6,
		Rows:         rows,
		Columns:      columns,
	}
}

// AxisMaximum rounds the largest balance or contribution up to the next tick step.
// Values are floored at 1 so an all-zero series still gets one tick interval.
// Non-finite values are skipped.
func AxisMaximum(points []ProjectionPoint, step float64) float64 {
	maxBalance, maxSavings := 1.0, 1.0
	for _, p := range points {
		if isFinite(p.FundBalance) {
			maxBalance = math.Max(maxBalance, p.FundBalance)
		}
		if isFinite(p.CumulativeContributions) {
			maxSavings = math.Max(maxSavings, p.CumulativeContributions)
		}
	}
	return math.Ceil(math.Max(maxBalance, maxSavings)/step) * step
}

// LabelStride returns how many points to skip between time-axis labels
func LabelStride(pointCount, maxLabels int) int {
	if maxLabels <= 0 {
		return 1
	}
	stride := int(math.Ceil(float64(pointCount) / float64(maxLabels)))
	if stride < 1 {
		return 1
	}
	return stride
}

func layoutChart(points []ProjectionPoint, page PageSize, cfg LayoutConfig) ChartLayout {
	chart := ChartLayout{
		X:      cfg.Margin + cfg.ChartLeftGutter,
		Y:      cfg.ChartTop,
		Width:  page.Width - cfg.Margin*2 - cfg.ChartLeftGutter,
		Height: cfg.ChartHeight,
	}

	step := cfg.TickStep
	if step <= 0 {
		step = DefaultLayoutConfig().TickStep
	}

	chart.MinValue = 0
	chart.MaxValue = AxisMaximum(points, step)
	if ticks := chart.MaxValue / step; ticks > maxValueTicks {
		// Widen the spacing to whole multiples of the configured step
		step *= math.Ceil(ticks / maxValueTicks)
		chart.MaxValue = AxisMaximum(points, step)
	}
	chart.TickStep = step
	valueRange := math.Max(1, chart.MaxValue-chart.MinValue)
	chart.ScaleY = chart.Height / valueRange
	if len(points) > 1 {
		chart.ScaleX = chart.Width / float64(len(points)-1)
	}

	tickCount := int(math.Round(chart.MaxValue / step))
	for k := 0; k <= tickCount; k++ {
		value := float64(k) * step
		chart.ValueTicks = append(chart.ValueTicks, AxisTick{Value: value, Y: chart.valueY(value)})
	}

	chart.LabelStride = LabelStride(len(points), cfg.MaxTimeLabels)
	for i := 0; i < len(points); i += chart.LabelStride {
		chart.TimeLabels = append(chart.TimeLabels, TimeLabel{Index: i, Year: points[i].Year, X: chart.pointX(i, len(points))})
	}

	chart.Balance = make([]ChartPoint, len(points))
	chart.Savings = make([]ChartPoint, len(points))
	for i, p := range points {
		x := chart.pointX(i, len(points))
		chart.Balance[i] = ChartPoint{X: x, Y: chart.valueY(p.FundBalance)}
		chart.Savings[i] = ChartPoint{X: x, Y: chart.valueY(p.CumulativeContributions)}
	}

	chart.LegendY = chart.Y + chart.Height + cfg.LegendOffset
	return chart
}

// pointX places point i from the left edge; a single point sits in the middle
func (c ChartLayout) pointX(i, count int) float64 {
	if count == 1 {
		return c.X + c.Width/2
	}
	return c.X + float64(i)*c.ScaleX
}

// valueY maps a value to page y, growing upwards from the chart bottom
func (c ChartLayout) valueY(value float64) float64 {
	return c.Y + c.Height - (value-c.MinValue)*c.ScaleY
}
