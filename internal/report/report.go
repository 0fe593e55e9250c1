// Package report renders a book as a printable PDF statement.
package report

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
)

// Input is everything shown in a report. Stats and Entries describe the
// whole book; Rows is what the table lists, which may be a filtered view.
type Input struct {
	BookName    string
	Stats       ledger.Stats
	Entries     int
	Rows        []models.Transaction
	GeneratedAt time.Time
	Location    *time.Location
}

const (
	descriptionLimit = 30
	pageBottom       = 280.0
	rowHeight        = 6.0
)

type column struct {
	title string
	width float64
	align string
}

var columns = []column{
	{"#", 10, "C"},
	{"Date", 25, "L"},
	{"Time", 20, "L"},
	{"Type", 15, "C"},
	{"Contact", 25, "L"},
	{"Description", 40, "L"},
	{"Amount", 25, "R"},
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename returns the download name for a report generated at the given time.
func Filename(bookName string, at time.Time) string {
	return fmt.Sprintf("%s_Report_%s.pdf", nonAlnum.ReplaceAllString(bookName, "_"), at.UTC().Format("2006-01-02"))
}

// FormatAmount rounds to whole units and groups thousands.
func FormatAmount(d decimal.Decimal) string {
	return humanize.Comma(d.Round(0).IntPart())
}

// Truncate shortens s to the description column limit.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= descriptionLimit {
		return s
	}
	return string(r[:descriptionLimit]) + "..."
}

// Render builds the PDF in memory. Nothing is returned unless the whole
// document was produced.
func Render(in Input) ([]byte, error) {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	generated := in.GeneratedAt.In(loc)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.Text(20, 285, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()))
		pdf.Text(120, 285, "Generated by CashBook")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(20, 20, "CashBook Report")

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 35, tr("Book: "+in.BookName))
	pdf.Text(20, 45, "Generated: "+generated.Format("02/01/2006 3:04:05 PM"))

	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(20, 65, "Summary")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(25, 75, "Net Balance: "+FormatAmount(in.Stats.NetBalance))
	pdf.Text(25, 85, "Total In (+): "+FormatAmount(in.Stats.TotalIn))
	pdf.Text(25, 95, "Total Out (-): "+FormatAmount(in.Stats.TotalOut))
	pdf.Text(25, 105, fmt.Sprintf("Total Entries: %d", in.Entries))

	if len(in.Rows) == 0 {
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(20, 135, "No transactions found.")
	} else {
		pdf.SetFont("Helvetica", "", 14)
		pdf.Text(20, 125, "Transactions")
		pdf.SetXY(15, 130)
		tableHeader(pdf)

		for i, tx := range in.Rows {
			if pdf.GetY()+rowHeight > pageBottom {
				pdf.AddPage()
				pdf.SetXY(15, 15)
				tableHeader(pdf)
			}
			tableRow(pdf, i, tx, loc, tr)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetX(15)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "", 0, c.align, true, 0, "")
	}
	pdf.Ln(rowHeight)
}

func tableRow(pdf *fpdf.Fpdf, i int, tx models.Transaction, loc *time.Location, tr func(string) string) {
	date := tx.Date.In(loc)
	kind, sign := "In", "+"
	if tx.Type == models.TransactionTypeCashOut {
		kind, sign = "Out", "-"
	}
	contact := tx.Contact
	if contact == "" {
		contact = models.CategoryCash
	}

	cells := []string{
		fmt.Sprintf("%d", i+1),
		date.Format("02/01/2006"),
		date.Format("3:04 PM"),
		kind,
		tr(contact),
		tr(Truncate(tx.Description)),
		sign + FormatAmount(tx.Amount),
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetX(15)
	for j, c := range columns {
		pdf.CellFormat(c.width, rowHeight, cells[j], "", 0, c.align, i%2 == 1, 0, "")
	}
	pdf.Ln(rowHeight)
}
