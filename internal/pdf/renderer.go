package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/corequote/corequote/internal/money"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

// Layout, in millimetres on an A4 portrait page.
const (
	pageW        = 210.0
	pageH        = 297.0
	marginX      = 15.0
	marginTop    = 15.0
	marginBottom = 20.0 // leaves room for the footer
	contentW     = pageW - 2*marginX

	logoMaxW = 40.0
	logoMaxH = 25.0
	gap      = 5.0

	lineH  = 5.0
	rowH   = 7.0
	titleH = 12.0
)

// Line-item table columns: concept, quantity, unit price, subtotal.
var tableCols = [4]float64{90, 22, 34, 34}

const (
	FooterText  = "Generado con CoreQuote"
	emptyLines  = "Sin conceptos"
	placeholder = "—"
	dateLayout  = "02/01/2006 15:04"
)

// Renderer draws QuoteDocuments.
type Renderer struct {
	loc *time.Location
}

// NewRenderer returns a renderer printing dates in loc (UTC when nil).
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{loc: loc}
}

// Render writes the complete PDF to w. The document is built in memory
// first, so nothing is written when rendering fails.
func (r *Renderer) Render(w io.Writer, doc QuoteDocument) error {
	f, err := r.build(doc)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return fmt.Errorf("output pdf: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// page wraps gofpdf with the cursor helpers used by every block.
type page struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func (r *Renderer) build(doc QuoteDocument) (*page, error) {
	f := gofpdf.New("P", "mm", "A4", "")
	f.SetMargins(marginX, marginTop, marginX)
	f.SetAutoPageBreak(false, marginBottom)
	f.SetTitle(fmt.Sprintf("Cotización #%d", doc.Number), true)
	f.SetCreator("CoreQuote", true)

	p := &page{Fpdf: f, tr: f.UnicodeTranslatorFromDescriptor("")}
	f.SetFooterFunc(func() {
		f.SetY(pageH - marginBottom + 6)
		f.SetFont("Helvetica", "I", 8)
		f.SetTextColor(120, 120, 120)
		f.CellFormat(contentW, lineH, p.tr(FooterText), "", 0, "C", false, 0, "")
		f.SetTextColor(0, 0, 0)
	})
	f.AddPage()

	p.header(doc)
	p.title()
	p.metadata(doc, r.loc)
	p.lines(doc.Lines)
	p.total(doc.Total)

	if err := f.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return p, nil
}

// ensure starts a new page when h more millimetres would overflow the
// printable area. It reports whether a page was added.
func (p *page) ensure(h float64) bool {
	if p.GetY()+h <= pageH-marginBottom {
		return false
	}
	p.AddPage()
	return true
}

func (p *page) text(style string, size float64) {
	p.SetFont("Helvetica", style, size)
}

// header draws the issuer block: logo and identity side by side, identity
// only, or the issuing user's name when there is no company profile.
func (p *page) header(doc QuoteDocument) {
	rows := []string{doc.IssuedBy}
	if doc.Company != nil {
		if id := doc.Company.identity(); len(id) > 0 {
			rows = id
		}
	}

	var logoW, logoH float64
	if doc.Company != nil && doc.Company.Logo != nil {
		logoW, logoH = p.logo(doc.Company.Logo)
	}

	textX := marginX
	if logoW > 0 {
		textX += logoW + gap
	}
	textW := pageW - marginX - textX
	textH := float64(len(rows)) * lineH
	blockH := max(textH, logoH)
	p.ensure(blockH)

	top := p.GetY()
	if logoW > 0 {
		p.ImageOptions("logo", marginX, top, logoW, logoH, false, gofpdf.ImageOptions{}, 0, "")
	}
	p.SetXY(textX, top)
	for i, row := range rows {
		if i == 0 {
			p.text("B", 12)
		} else {
			p.text("", 9)
		}
		p.SetX(textX)
		p.CellFormat(textW, lineH, p.tr(row), "", 1, "L", false, 0, "")
	}
	p.SetY(top + blockH + gap)
}

// logo registers the image and returns its printed size, or zeros when the
// bytes cannot be used.
func (p *page) logo(raw []byte) (float64, float64) {
	l, err := prepareLogo(raw)
	if err != nil {
		return 0, 0
	}
	p.RegisterImageOptionsReader("logo", gofpdf.ImageOptions{ImageType: l.imageType}, bytes.NewReader(l.data))
	if p.Err() {
		// Registration failures are not fatal: fall back to text.
		p.ClearError()
		return 0, 0
	}
	return fit(l.width, l.height, logoMaxW, logoMaxH)
}

func (p *page) title() {
	p.ensure(titleH)
	p.text("B", 18)
	p.CellFormat(contentW, titleH, p.tr("Cotización"), "", 1, "L", false, 0, "")
	p.Ln(2)
}

func (p *page) metadata(doc QuoteDocument, loc *time.Location) {
	email := doc.Client.Email
	if email == "" {
		email = placeholder
	}
	grid := [3][4]string{
		{"Folio", "#" + strconv.FormatUint(uint64(doc.Number), 10), "Fecha", doc.CreatedAt.In(loc).Format(dateLayout)},
		{"Cliente", doc.Client.Name, "Correo", email},
		{"Emitida por", doc.IssuedBy, "Estado", doc.Status},
	}
	widths := [4]float64{25, 65, 25, 65}

	p.ensure(float64(len(grid)) * rowH)
	p.SetDrawColor(210, 210, 210)
	p.SetFillColor(242, 242, 242)
	for _, row := range grid {
		for i, cell := range row {
			label := i%2 == 0
			if label {
				p.text("B", 9)
			} else {
				p.text("", 9)
			}
			ln := 0
			if i == len(row)-1 {
				ln = 1
			}
			p.CellFormat(widths[i], rowH, p.tr(cell), "1", ln, "L", label, 0, "")
		}
	}
	p.Ln(gap)
}

func (p *page) tableHeader() {
	p.text("B", 9)
	p.SetFillColor(45, 55, 72)
	p.SetTextColor(255, 255, 255)
	heads := [4]string{"Concepto", "Cantidad", "Precio unitario", "Subtotal"}
	aligns := [4]string{"L", "R", "R", "R"}
	for i, h := range heads {
		ln := 0
		if i == len(heads)-1 {
			ln = 1
		}
		p.CellFormat(tableCols[i], rowH, p.tr(h), "", ln, aligns[i], true, 0, "")
	}
	p.SetTextColor(0, 0, 0)
}

// lines draws the item table. Rows never split across pages; the header is
// repeated at the top of every continuation page.
func (p *page) lines(lines []Line) {
	p.ensure(2 * rowH)
	p.tableHeader()
	p.SetDrawColor(210, 210, 210)

	if len(lines) == 0 {
		p.row([4]string{emptyLines, placeholder, placeholder, placeholder})
		return
	}
	for _, l := range lines {
		p.row([4]string{
			l.Description,
			strconv.Itoa(l.Quantity),
			money.Format(l.UnitPrice),
			money.Format(l.Subtotal),
		})
	}
}

func (p *page) row(cells [4]string) {
	p.text("", 9)
	wrapped := p.SplitLines([]byte(p.tr(cells[0])), tableCols[0]-2)
	h := max(rowH, float64(len(wrapped))*lineH+2)
	if p.ensure(h) {
		p.tableHeader()
		p.text("", 9)
	}

	x, y := p.GetXY()
	p.SetXY(x, y+1)
	for _, ln := range wrapped {
		p.SetX(x)
		p.CellFormat(tableCols[0], lineH, string(ln), "", 2, "L", false, 0, "")
	}
	cx := x + tableCols[0]
	for i := 1; i < len(cells); i++ {
		p.SetXY(cx, y)
		p.CellFormat(tableCols[i], h, p.tr(cells[i]), "", 0, "R", false, 0, "")
		cx += tableCols[i]
	}
	p.Line(marginX, y+h, marginX+contentW, y+h)
	p.SetXY(marginX, y+h)
}

func (p *page) total(total decimal.Decimal) {
	p.ensure(rowH + gap)
	p.Ln(gap)
	labelW := tableCols[2]
	valueW := tableCols[3]
	p.SetX(marginX + contentW - labelW - valueW)
	p.SetFillColor(230, 240, 255)
	p.text("B", 11)
	p.CellFormat(labelW, rowH+1, "Total", "", 0, "R", true, 0, "")
	p.CellFormat(valueW, rowH+1, money.Format(total), "", 1, "R", true, 0, "")
}
