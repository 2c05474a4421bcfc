// Package pdfdoc renders simple A4 documents: a page frame, a letterhead drawn on every
// page and a flat list of content blocks.
package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
)

const (
	baseFontSize = 10.0
	fontFamily   = "Helvetica"
)

// Frame is the page geometry, in millimetres.
type Frame struct {
	Orientation string
	Size        string
	Left        float64
	Top         float64
	Right       float64
	Bottom      float64
}

// A4 is the portrait frame used by every school document.
var A4 = Frame{Orientation: "P", Size: "A4", Left: 25, Top: 15, Right: 25, Bottom: 15}

// Letterhead is drawn at the top and bottom of each page.
type Letterhead struct {
	Lines       []string
	FooterLeft  string
	FooterMid   string
	FooterRight string
}

// School is the default letterhead.
var School = Letterhead{
	Lines:       []string{"CPNE - Pôle Santé-Social", "Rue de la Prévoyance 82", "2300 La Chaux-de-Fonds"},
	FooterLeft:  "032 886 33 00",
	FooterMid:   "cpne-2s@rpn.ch",
	FooterRight: "www.cpne.ch",
}

// Kind tags a content block.
type Kind int

const (
	// Address is a recipient line, indented to the right half of the page.
	Address Kind = iota
	// Title is a bold heading followed by a horizontal rule.
	Title
	// Paragraph is wrapped body text.
	Paragraph
	// Note is small bold italic text.
	Note
	// Row is a table line: Text on the left, Values right-aligned in fixed columns.
	Row
	// Spacer is vertical blank space of Height millimetres.
	Spacer
	// Field is a form line: Text in bold, the recorded value in Values[0] and a rule to
	// write the correction on.
	Field
	// PageBreak starts a new page.
	PageBreak
)

// Block is one piece of content.
type Block struct {
	Kind   Kind
	Text   string
	Values []string
	Bold   bool
	// LineAbove draws a rule above a Row.
	LineAbove bool
	Height    float64
}

// Document is a frame, a letterhead and content blocks.
type Document struct {
	Frame      Frame
	Letterhead Letterhead
	Title      string
	Blocks     []Block
}

// New returns an A4 document with the school letterhead.
func New(title string) *Document {
	return &Document{Frame: A4, Letterhead: School, Title: title}
}

// Add appends blocks and returns d for chaining.
func (d *Document) Add(blocks ...Block) *Document {
	d.Blocks = append(d.Blocks, blocks...)
	return d
}

// Render writes the PDF to w.
func (d *Document) Render(w io.Writer) error {
	pdf := fpdf.New(d.Frame.Orientation, "mm", d.Frame.Size, "")
	pdf.SetMargins(d.Frame.Left, d.Frame.Top, d.Frame.Right)
	pdf.SetAutoPageBreak(true, d.Frame.Bottom+5)
	pdf.SetTitle(d.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() { d.drawHeader(pdf, tr) })
	pdf.SetFooterFunc(func() { d.drawFooter(pdf, tr) })
	pdf.AddPage()

	for _, b := range d.Blocks {
		d.drawBlock(pdf, tr, b)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return nil
}

// Bytes renders the document in memory.
func (d *Document) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := d.Render(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders the document to path.
func (d *Document) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := d.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *Document) contentWidth(pdf *fpdf.Fpdf) float64 {
	w, _ := pdf.GetPageSize()
	return w - d.Frame.Left - d.Frame.Right
}

func (d *Document) drawHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont(fontFamily, "B", baseFontSize)
	for i, line := range d.Letterhead.Lines {
		if i == 1 {
			pdf.SetFont(fontFamily, "", baseFontSize-1)
		}
		pdf.CellFormat(0, 4.5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (d *Document) drawFooter(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetY(-d.Frame.Bottom)
	width := d.contentWidth(pdf)
	pdf.SetFont(fontFamily, "", 9)
	pdf.CellFormat(width/3, 5, tr(d.Letterhead.FooterLeft), "", 0, "L", false, 0, "")
	pdf.CellFormat(width/3, 5, tr(d.Letterhead.FooterMid), "", 0, "C", false, 0, "")
	pdf.SetFont(fontFamily, "B", 9)
	pdf.CellFormat(width/3, 5, tr(d.Letterhead.FooterRight), "", 0, "R", false, 0, "")
}

func (d *Document) drawBlock(pdf *fpdf.Fpdf, tr func(string) string, b Block) {
	width := d.contentWidth(pdf)
	style := ""
	if b.Bold {
		style = "B"
	}

	switch b.Kind {
	case Address:
		pdf.SetFont(fontFamily, style, baseFontSize)
		pdf.SetX(d.Frame.Left + 90)
		pdf.CellFormat(width-90, 5, tr(b.Text), "", 1, "L", false, 0, "")
	case Title:
		pdf.Ln(3)
		pdf.SetFont(fontFamily, "B", baseFontSize)
		pdf.MultiCell(width, 5, tr(b.Text), "", "L", false)
		y := pdf.GetY() + 1
		pdf.Line(d.Frame.Left, y, d.Frame.Left+width*0.95, y)
		pdf.Ln(3)
	case Paragraph:
		pdf.SetFont(fontFamily, style, baseFontSize)
		pdf.MultiCell(width, 5, tr(b.Text), "", "L", false)
	case Note:
		pdf.SetFont(fontFamily, "BI", baseFontSize-2)
		pdf.MultiCell(width, 4, tr(b.Text), "", "L", false)
	case Row:
		d.drawRow(pdf, tr, b, style, width)
	case Spacer:
		pdf.Ln(b.Height)
	case Field:
		d.drawField(pdf, tr, b, width)
	case PageBreak:
		pdf.AddPage()
	}
}

func (d *Document) drawField(pdf *fpdf.Fpdf, tr func(string) string, b Block, width float64) {
	const labelWidth, valueWidth, rowHeight = 30.0, 55.0, 7.0
	value := ""
	if len(b.Values) > 0 {
		value = b.Values[0]
	}
	pdf.SetX(d.Frame.Left)
	pdf.SetFont(fontFamily, "B", baseFontSize-1)
	pdf.CellFormat(labelWidth, rowHeight, tr(b.Text), "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", baseFontSize-1)
	pdf.CellFormat(valueWidth, rowHeight, tr(value), "", 0, "L", false, 0, "")
	if b.Text != "" {
		y := pdf.GetY() + rowHeight - 1
		pdf.Line(d.Frame.Left+labelWidth+valueWidth, y, d.Frame.Left+width, y)
	}
	pdf.Ln(rowHeight)
}

// Rows use a 120 mm label column then 20 mm value columns, like the printed sheets.
func (d *Document) drawRow(pdf *fpdf.Fpdf, tr func(string) string, b Block, style string, width float64) {
	const labelWidth, valueWidth, rowHeight = 120.0, 20.0, 6.0
	left := d.Frame.Left + (width-labelWidth-2*valueWidth)/2
	if b.LineAbove {
		y := pdf.GetY()
		pdf.Line(left, y, left+labelWidth+2*valueWidth, y)
	}
	pdf.SetFont(fontFamily, style, baseFontSize-2)
	pdf.SetX(left)
	pdf.CellFormat(labelWidth, rowHeight, tr(b.Text), "", 0, "L", false, 0, "")
	for i := 0; i < 2; i++ {
		value := ""
		if i < len(b.Values) {
			value = b.Values[i]
		}
		pdf.CellFormat(valueWidth, rowHeight, tr(value), "", 0, "R", false, 0, "")
	}
	pdf.Ln(rowHeight)
}
