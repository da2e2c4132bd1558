package main

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrRenderFailed is the single terminal failure of RenderDocument. No partial document accompanies it.
	ErrRenderFailed = errors.New("PDF konnte nicht erstellt werden")
	// ErrPageUnavailable means every page-creation strategy for one page failed
	ErrPageUnavailable = errors.New("page unavailable")
)

// fallbackCreationDate keeps output byte-identical when the caller passes no date
var fallbackCreationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// RenderOptions holds the non-geometry settings of one rendering
type RenderOptions struct {
	Title          string
	FilenamePrefix string
	Engine         EngineConfig // cost figures quoted in the disclaimer
	CreatedAt      time.Time    // document date and filename date
}

// NewRenderOptions combines report and engine settings for a document dated at
func NewRenderOptions(report ReportConfig, engine EngineConfig, at time.Time) RenderOptions {
	return RenderOptions{
		Title:          report.Title,
		FilenamePrefix: report.FilenamePrefix,
		Engine:         engine,
		CreatedAt:      at,
	}
}

// Document is a finished report. It is only ever returned complete.
type Document struct {
	Title    string
	Filename string
	Pages    int
	Bytes    []byte
	Plan     PaintPlan
}

// pageStrategy is one way of starting a page of the given size
type pageStrategy struct {
	name string
	add  func(pdf *fpdf.Fpdf, size PageSize)
}

var portraitStrategies = []pageStrategy{
	{name: "format-portrait", add: func(pdf *fpdf.Fpdf, size PageSize) {
		pdf.AddPageFormat(string(Portrait), fpdf.SizeType{Wd: size.Width, Ht: size.Height})
	}},
	{name: "default-page", add: func(pdf *fpdf.Fpdf, _ PageSize) {
		pdf.AddPage()
	}},
}

// Landscape pages are tried as a rotated portrait format, then as an explicit
// wide format, then as whatever the document default is.
var landscapeStrategies = []pageStrategy{
	{name: "format-landscape", add: func(pdf *fpdf.Fpdf, size PageSize) {
		pdf.AddPageFormat(string(Landscape), fpdf.SizeType{Wd: size.Height, Ht: size.Width})
	}},
	{name: "explicit-size", add: func(pdf *fpdf.Fpdf, size PageSize) {
		pdf.AddPageFormat(string(Portrait), fpdf.SizeType{Wd: size.Width, Ht: size.Height})
	}},
	{name: "default-page", add: func(pdf *fpdf.Fpdf, _ PageSize) {
		pdf.AddPage()
	}},
}

// PDFReport replays a paint plan on an fpdf document
type PDFReport struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	options   RenderOptions
	portrait  []pageStrategy
	landscape []pageStrategy
}

func newPDFReport(options RenderOptions) *PDFReport {
	if options.CreatedAt.IsZero() {
		options.CreatedAt = fallbackCreationDate
	}
	return &PDFReport{
		options:   options,
		portrait:  portraitStrategies,
		landscape: landscapeStrategies,
	}
}

// RenderDocument produces the two-page report: portrait summary with the yearly
// table, landscape chart. It performs no file or network I/O.
func RenderDocument(input ProjectionInput, rates DerivedRates, points []ProjectionPoint, layout ReportLayout, options RenderOptions) (*Document, error) {
	plan := BuildPaintPlan(ReportContent{
		Title:  options.Title,
		Input:  input,
		Rates:  rates,
		Points: points,
		Engine: options.Engine,
	}, layout)

	doc, err := newPDFReport(options).render(plan)
	if err != nil {
		Log.Error("PDF rendering failed", zap.Error(err), zap.Int("points", len(points)))
		return nil, err
	}
	return doc, nil
}

// GenerateReport projects input with the configured engine and renders the report dated at
func GenerateReport(config *Config, input ProjectionInput, at time.Time) (*Document, ProjectionResult, error) {
	result := RunProjection(input, config.Engine)
	layout := ComputeLayout(result.Points, config.Report.LayoutConfig())
	doc, err := RenderDocument(input, result.Rates, result.Points, layout, NewRenderOptions(config.Report, config.Engine, at))
	return doc, result, err
}

func (r *PDFReport) render(plan PaintPlan) (*Document, error) {
	pdf := fpdf.New(string(Portrait), "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetCreationDate(r.options.CreatedAt)
	pdf.SetModificationDate(r.options.CreatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(plan.Title, true)
	pdf.SetCreator("goTrialFinancing", false)

	r.pdf = pdf
	r.tr = pdf.UnicodeTranslatorFromDescriptor("") // cp1252 has the euro sign
	defer func() { r.pdf = nil }()

	for i, page := range plan.Pages {
		strategies := r.portrait
		if page.Orientation == Landscape {
			strategies = r.landscape
		}
		if err := r.addPage(strategies, page.Size); err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrRenderFailed, i+1, err)
		}
		r.drawPage(page)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	return &Document{
		Title:    plan.Title,
		Filename: ExportFilename(r.options.FilenamePrefix, r.options.CreatedAt),
		Pages:    pdf.PageCount(),
		Bytes:    buf.Bytes(),
		Plan:     plan,
	}, nil
}

// addPage tries each strategy in order and clears the document error between attempts
func (r *PDFReport) addPage(strategies []pageStrategy, size PageSize) error {
	var failures []string
	for _, s := range strategies {
		s.add(r.pdf, size)
		if !r.pdf.Err() {
			return nil
		}
		failures = append(failures, s.name+": "+r.pdf.Error().Error())
		Log.Warn("page strategy failed", zap.String("strategy", s.name), zap.Error(r.pdf.Error()))
		r.pdf.ClearError()
	}
	return errors.Wrapf(ErrPageUnavailable, "%d strategies tried (%s)", len(strategies), strings.Join(failures, "; "))
}

func (r *PDFReport) drawPage(page PagePlan) {
	for _, op := range page.Ops {
		r.drawOp(op)
	}
}

func (r *PDFReport) drawOp(op PaintOp) {
	pdf := r.pdf
	switch op.Kind {
	case OpFillRect:
		pdf.SetFillColor(op.Color.R, op.Color.G, op.Color.B)
		pdf.Rect(op.X, op.Y, op.W, op.H, "F")

	case OpStrokeRect:
		pdf.SetDrawColor(op.Color.R, op.Color.G, op.Color.B)
		pdf.SetLineWidth(op.LineWidth)
		pdf.Rect(op.X, op.Y, op.W, op.H, "D")

	case OpLine:
		pdf.SetDrawColor(op.Color.R, op.Color.G, op.Color.B)
		pdf.SetLineWidth(op.LineWidth)
		pdf.Line(op.X, op.Y, op.X2, op.Y2)

	case OpPolyline:
		if len(op.Points) < 2 {
			return
		}
		pdf.SetDrawColor(op.Color.R, op.Color.G, op.Color.B)
		pdf.SetLineWidth(op.LineWidth)
		pdf.MoveTo(op.Points[0].X, op.Points[0].Y)
		for _, p := range op.Points[1:] {
			pdf.LineTo(p.X, p.Y)
		}
		pdf.DrawPath("D")

	case OpText:
		txt := r.tr(op.Text)
		pdf.SetFont("Helvetica", op.FontStyle, op.FontSize)
		pdf.SetTextColor(op.Color.R, op.Color.G, op.Color.B)
		x := op.X
		switch op.Align {
		case AlignCenter:
			x -= pdf.GetStringWidth(txt) / 2
		case AlignRight:
			x -= pdf.GetStringWidth(txt)
		}
		pdf.Text(x, op.Y, txt)

	case OpTextBlock:
		pdf.SetFont("Helvetica", op.FontStyle, op.FontSize)
		pdf.SetTextColor(op.Color.R, op.Color.G, op.Color.B)
		for i, line := range pdf.SplitText(r.tr(op.Text), op.W) {
			pdf.Text(op.X, op.Y+float64(i)*op.H, line)
		}
	}
}
