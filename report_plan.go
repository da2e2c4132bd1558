package main

import (
	"fmt"
	"strconv"
)

// Color is an RGB colour
type Color struct {
	R, G, B int
}

// Gray returns a neutral colour with equal channels
func Gray(level int) Color {
	return Color{level, level, level}
}

// Report palette
var (
	colorBrandRed  = Color{190, 13, 62}
	colorTableHead = Color{0, 71, 103}
	colorBalance   = Color{66, 126, 91}
	colorSavings   = Color{100, 109, 116}
	colorWhite     = Gray(255)
	colorBlack     = Gray(0)
)

// OpKind is the type of a paint primitive
type OpKind int

const (
	OpFillRect OpKind = iota
	OpStrokeRect
	OpLine
	OpText
	OpPolyline
	OpTextBlock
)

func (k OpKind) String() string {
	switch k {
	case OpFillRect:
		return "fill-rect"
	case OpStrokeRect:
		return "stroke-rect"
	case OpLine:
		return "line"
	case OpText:
		return "text"
	case OpPolyline:
		return "polyline"
	case OpTextBlock:
		return "text-block"
	default:
		return "unknown"
	}
}

// PaintOp is one drawing primitive in page coordinates (points, origin top-left).
// Text is anchored at its baseline; X is interpreted according to Align.
// A text block wraps at W and puts each further line H below the previous baseline.
type PaintOp struct {
	Kind      OpKind
	X, Y      float64
	X2, Y2    float64 // line end
	W, H      float64 // rect size; text block width and line height
	Points    []ChartPoint
	Text      string
	Align     Align
	Color     Color
	LineWidth float64
	FontStyle string // "" or "B"
	FontSize  float64
}

// Orientation of a page
type Orientation string

const (
	Portrait  Orientation = "P"
	Landscape Orientation = "L"
)

// PagePlan holds the primitives of one page
type PagePlan struct {
	Orientation Orientation
	Size        PageSize
	Ops         []PaintOp
}

// PaintPlan is the full two-page report as primitives
type PaintPlan struct {
	Title string
	Pages []PagePlan
}

// ReportContent is everything the report shows besides geometry
type ReportContent struct {
	Title  string
	Input  ProjectionInput
	Rates  DerivedRates
	Points []ProjectionPoint
	Engine EngineConfig
}

type pageBuilder struct {
	page PagePlan
}

func (b *pageBuilder) fillRect(x, y, w, h float64, c Color) {
	b.page.Ops = append(b.page.Ops, PaintOp{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Color: c})
}

func (b *pageBuilder) strokeRect(x, y, w, h float64, c Color, width float64) {
	b.page.Ops = append(b.page.Ops, PaintOp{Kind: OpStrokeRect, X: x, Y: y, W: w, H: h, Color: c, LineWidth: width})
}

func (b *pageBuilder) line(x1, y1, x2, y2 float64, c Color, width float64) {
	b.page.Ops = append(b.page.Ops, PaintOp{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Color: c, LineWidth: width})
}

func (b *pageBuilder) text(x, y float64, s string, align Align, c Color, style string, size float64) {
	b.page.Ops = append(b.page.Ops, PaintOp{Kind: OpText, X: x, Y: y, Text: s, Align: align, Color: c, FontStyle: style, FontSize: size})
}

func (b *pageBuilder) textBlock(x, y, w, lineHeight float64, s string, c Color, size float64) {
	b.page.Ops = append(b.page.Ops, PaintOp{Kind: OpTextBlock, X: x, Y: y, W: w, H: lineHeight, Text: s, Align: AlignLeft, Color: c, FontSize: size})
}

func (b *pageBuilder) polyline(points []ChartPoint, c Color, width float64) {
	pts := make([]ChartPoint, len(points))
	copy(pts, points)
	b.page.Ops = append(b.page.Ops, PaintOp{Kind: OpPolyline, Points: pts, Color: c, LineWidth: width})
}

func (b *pageBuilder) headerBand(title string, height float64) {
	b.fillRect(0, 0, b.page.Size.Width, height, colorBrandRed)
	b.text(b.page.Size.Width/2, 40, title, AlignCenter, colorWhite, "B", 16)
}

// disclaimerBottom is the distance from the page bottom to the disclaimer's first baseline
const disclaimerBottom = 24

// Line widths
const (
	hairline    = 0.5
	seriesWidth = 2
	legendWidth = 3
)

// BuildPaintPlan turns report content and its layout into per-page primitives.
// It performs no I/O and is deterministic for identical arguments.
func BuildPaintPlan(content ReportContent, layout ReportLayout) PaintPlan {
	return PaintPlan{
		Title: content.Title,
		Pages: []PagePlan{
			summaryPage(content, layout),
			chartPage(content, layout),
		},
	}
}

func summaryPage(content ReportContent, layout ReportLayout) PagePlan {
	b := &pageBuilder{page: PagePlan{Orientation: Portrait, Size: layout.Portrait}}
	margin := layout.Margin
	in := content.Input

	b.headerBand(content.Title, 64)

	left := []string{
		fmt.Sprintf("Deine aktuelle Warmmiete: %s € / Monat", FormatNumber(in.WarmRent)),
		fmt.Sprintf("Aktueller Kaufpreis einer Wunschimmobilie: %s €", FormatNumber(in.PurchasePrice)),
		fmt.Sprintf("Renditeerwartung: %s %% p.a.", FormatRate(in.ExpectedReturnRate)),
		fmt.Sprintf("Zins: %s %% p.a.", FormatRate(in.InterestRate)),
		fmt.Sprintf("Tilgung: %s %% p.a.", FormatRate(in.AmortizationRate)),
		fmt.Sprintf("Nebenkosten: %s %% vom Kaufpreis", FormatRate(in.AncillaryCostPercentage)),
	}
	y := 90.0
	for _, s := range left {
		b.text(margin, y, s, AlignLeft, colorBlack, "", 11)
		y += 20
	}

	right := []string{
		"Monatliche Finanzierungsrate: " + FormatEUR(content.Rates.MonthlyFinancingPayment),
		"Monatliche Sparrate: " + FormatEUR(content.Rates.MonthlySavingsDifferential),
	}
	yRight := 90.0
	for _, s := range right {
		b.text(margin+350, yRight, s, AlignLeft, colorBlack, "", 11)
		yRight += 20
	}

	if len(content.Points) == 0 {
		return b.page
	}

	table := layout.Table
	b.text(margin, table.Y-20, fmt.Sprintf("Kapitalentwicklung (jährlich, bis %d Jahre)", len(content.Points)),
		AlignLeft, colorBrandRed, "B", 13)

	b.fillRect(table.X, table.Y-14, table.Width, table.HeaderHeight, colorTableHead)
	for _, col := range table.Columns {
		b.text(col.TextX(), table.Y+2, columnTitle(col.Kind), col.Align, colorWhite, "B", 11)
	}

	for i, p := range content.Points {
		rowY := table.RowTop(i)
		b.line(table.X, rowY, table.X+table.Width, rowY, Gray(235), hairline)
		for _, col := range table.Columns {
			b.text(col.TextX(), rowY+14, cellText(col.Kind, p), col.Align, colorBlack, "", 11)
		}
	}

	b.textBlock(margin, layout.Portrait.Height-disclaimerBottom, layout.Portrait.Width-margin*2, 10,
		disclaimer(content.Engine), Gray(120), 8)

	return b.page
}

func chartPage(content ReportContent, layout ReportLayout) PagePlan {
	b := &pageBuilder{page: PagePlan{Orientation: Landscape, Size: layout.Landscape}}
	margin := layout.Margin
	chart := layout.Chart
	bottom := chart.Y + chart.Height

	b.headerBand(content.Title, 64)
	b.text(margin, 100, "Kapitalverlauf", AlignLeft, colorBrandRed, "B", 13)

	for _, tick := range chart.ValueTicks {
		b.line(chart.X-6, tick.Y, chart.X, tick.Y, colorBlack, hairline)
		b.line(chart.X, tick.Y, chart.X+chart.Width, tick.Y, Gray(230), hairline)
		b.text(chart.X-10, tick.Y+3, FormatNumber(tick.Value), AlignRight, Gray(60), "", 9)
	}
	b.strokeRect(chart.X, chart.Y, chart.Width, chart.Height, colorBlack, hairline)

	for _, label := range chart.TimeLabels {
		b.line(label.X, bottom, label.X, bottom+4, colorBlack, hairline)
		b.text(label.X, bottom+16, strconv.Itoa(label.Year), AlignCenter, Gray(60), "", 9)
	}
	b.text(chart.X+chart.Width/2, bottom+30, "Jahre", AlignCenter, Gray(80), "", 10)

	// A single point has no line to draw
	if len(chart.Balance) > 1 {
		b.polyline(chart.Balance, colorBalance, seriesWidth)
		b.polyline(chart.Savings, colorSavings, seriesWidth)
	}

	b.line(margin, chart.LegendY, margin+24, chart.LegendY, colorBalance, legendWidth)
	b.text(margin+32, chart.LegendY+3, "Fondsguthaben", AlignLeft, colorBlack, "", 10)
	b.line(margin+160, chart.LegendY, margin+184, chart.LegendY, colorSavings, legendWidth)
	b.text(margin+192, chart.LegendY+3, "Kumulierte Sparrate", AlignLeft, colorBlack, "", 10)

	return b.page
}

func columnTitle(kind ColumnKind) string {
	switch kind {
	case ColumnYear:
		return "Jahr"
	case ColumnBalance:
		return "Fondsguthaben (€)"
	case ColumnContributions:
		return "Kumulierte Sparrate (€)"
	case ColumnEquityRatio:
		return "Eigenkapitalquote"
	default:
		return ""
	}
}

func cellText(kind ColumnKind, p ProjectionPoint) string {
	switch kind {
	case ColumnYear:
		return strconv.Itoa(p.Year)
	case ColumnBalance:
		return FormatNumber(p.FundBalance)
	case ColumnContributions:
		return FormatNumber(p.CumulativeContributions)
	case ColumnEquityRatio:
		return FormatRatio(p.EquityRatioPercent)
	default:
		return ""
	}
}

func disclaimer(engine EngineConfig) string {
	p := germanPrinter()
	return p.Sprintf("Beispielhafte, unverbindliche Berechnung. Kosten: %.1f %% Vertragskosten + %.1f %% Fondskosten p.a.; "+
		"Stückkosten %s € p.a. (ab Jahresbeginn). Sparrate = Finanzierungsrate – Warmmiete.",
		engine.ContractCostRate*100, engine.FundCostRate*100, FormatNumber(engine.AnnualFlatFee))
}
