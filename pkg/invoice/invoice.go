// Package invoice typesets order invoices as PDF with fpdf.
package invoice

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
)

// Line is one invoiced item.
type Line struct {
	Name     string
	Quantity int
	Price    int64
	Subtotal int64
}

// Invoice is everything printed on the document.
type Invoice struct {
	Number        uint
	Date          time.Time
	Status        string
	CustomerName  string
	Phone         string
	Email         string
	HouseNumber   string
	Address       string
	Pincode       string
	CustomDetails string
	Lines         []Line
	Total         int64
}

// Shop identifies the seller in the header.
var Shop = "HeartScript"

// Filename is the download name for an order's invoice.
func Filename(number uint) string {
	return fmt.Sprintf("invoice_%d.pdf", number)
}

func money(v int64) string { return "Rs. " + strconv.FormatInt(v, 10) }

// Render returns the PDF bytes.
func Render(inv Invoice) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s invoice %d", Shop, inv.Number), true)
	pdf.SetCreator(Shop, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr(Shop), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Invoice #%d", inv.Number), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+inv.Date.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	if inv.Status != "" {
		pdf.CellFormat(0, 6, "Status: "+tr(inv.Status), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range []string{
		inv.CustomerName,
		join(inv.HouseNumber, inv.Address),
		inv.Pincode,
		inv.Phone,
		inv.Email,
	} {
		if row != "" {
			pdf.CellFormat(0, 6, tr(row), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	widths := []float64{95, 20, 35, 40}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range []string{"Item", "Qty", "Price", "Subtotal"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }
	for _, l := range inv.Lines {
		name := fit(measure, l.Name, widths[0]-2*pdf.GetCellMargin())
		pdf.CellFormat(widths[0], 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.Itoa(l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(l.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(l.Subtotal), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, money(inv.Total), "1", 1, "R", false, 0, "")

	if inv.CustomDetails != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Personalization", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(inv.CustomDetails), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: render %d: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}

// fit shortens s with a trailing "..." until measure says it fits width.
func fit(measure func(string) float64, s string, width float64) string {
	if measure(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && measure(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + ", " + b
	}
}
