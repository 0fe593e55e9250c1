package exchange

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
	"cashbook/internal/uuid"
	appvalidator "cashbook/internal/validator"
)

// CSVHeader is the header row of an exported book.
var CSVHeader = []string{"ID", "Type", "Amount", "Description", "Contact", "Category", "Date", "Created By"}

// CSVDateLayout renders dates in exported files.
const CSVDateLayout = "1/2/2006, 3:04:05 PM"

// requiredColumns must all appear in an imported header, in any order and case.
var requiredColumns = []string{"type", "amount", "description", "contact", "category", "date", "created by"}

// Layouts accepted for the date column on import, tried in order.
var importDateLayouts = []string{
	time.RFC3339Nano,
	CSVDateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	models.DateLayout,
	"1/2/2006 15:04",
	"1/2/2006",
}

var (
	ErrNothingToExport = errors.New("no transactions to export")
	ErrEmptyCSV        = errors.New("CSV file has no data rows")
	ErrMissingHeaders  = errors.New("CSV file is missing required headers")
	ErrNoValidRows     = errors.New("CSV file has no valid transactions")
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CSVFilename returns the download name for a book's CSV export.
func CSVFilename(bookName string) string {
	return nonAlnum.ReplaceAllString(bookName, ".") + "_transactions.csv"
}

// WriteCSV writes txs with every field quoted. Dates are rendered in loc.
func WriteCSV(w io.Writer, txs []models.Transaction, loc *time.Location) error {
	if len(txs) == 0 {
		return ErrNothingToExport
	}
	if loc == nil {
		loc = time.Local
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(CSVHeader, ","))
	for _, tx := range txs {
		bw.WriteByte('\n')
		bw.WriteString(quoteAll(
			tx.ID,
			string(tx.Type),
			tx.Amount.String(),
			tx.Description,
			tx.Contact,
			tx.Category,
			tx.Date.In(loc).Format(CSVDateLayout),
			tx.CreatedBy,
		))
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// quoteAll joins fields as CSV, quoting each one unconditionally.
func quoteAll(fields ...string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// SkippedRow describes a data row left out of an import.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// CSVImport is the outcome of reading a CSV file.
type CSVImport struct {
	Transactions []models.Transaction `json:"transactions"`
	Skipped      []SkippedRow         `json:"skipped"`
}

// CSVReader turns CSV files into transactions for one book.
type CSVReader struct {
	BookID   string
	Now      time.Time
	Location *time.Location
	NewID    func(time.Time) string

	validate *validator.Validate
}

// csvRow is one data row after column lookup.
type csvRow struct {
	Type        string `validate:"required,cash_type"`
	Amount      string `validate:"required,numeric"`
	Description string `validate:"required"`
	Contact     string
	Category    string
	Date        string
	CreatedBy   string
}

// Read parses r. Rows that fail validation are skipped and reported; the
// file as a whole fails only when it is empty, lacks a required header or
// has no valid rows at all.
func (cr *CSVReader) Read(r io.Reader) (*CSVImport, error) {
	if cr.validate == nil {
		cr.validate = appvalidator.New()
	}
	if cr.NewID == nil {
		cr.NewID = uuid.NewAt
	}
	loc := cr.Location
	if loc == nil {
		loc = time.Local
	}
	log := logger.Named("exchange")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	columns, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	result := &CSVImport{Transactions: []models.Transaction{}, Skipped: []SkippedRow{}}
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		if blank(record) {
			continue
		}
		rows++
		line, _ := reader.FieldPos(0)

		tx, err := cr.parseRow(columns, record, loc)
		if err != nil {
			log.Warnw("skipping invalid CSV row", "line", line, "reason", err.Error(), "book_id", cr.BookID)
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	if rows == 0 {
		return nil, ErrEmptyCSV
	}
	if len(result.Transactions) == 0 {
		return result, ErrNoValidRows
	}
	return result, nil
}

func (cr *CSVReader) parseRow(columns map[string]int, record []string, loc *time.Location) (models.Transaction, error) {
	get := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := csvRow{
		Type:        strings.ToLower(get("type")),
		Amount:      get("amount"),
		Description: get("description"),
		Contact:     get("contact"),
		Category:    get("category"),
		Date:        get("date"),
		CreatedBy:   get("created by"),
	}
	if err := cr.validate.Struct(row); err != nil {
		return models.Transaction{}, describeValidation(err)
	}

	amount, err := ledger.ParseAmount(row.Amount)
	if err != nil {
		return models.Transaction{}, err
	}

	date := cr.Now
	if row.Date != "" {
		date, err = parseImportDate(row.Date, loc)
		if err != nil {
			return models.Transaction{}, err
		}
	}

	tx := models.Transaction{
		ID:          cr.NewID(date),
		BookID:      cr.BookID,
		Type:        models.TransactionType(row.Type),
		Amount:      amount,
		Description: row.Description,
		Contact:     row.Contact,
		Category:    row.Category,
		Date:        date,
		CreatedBy:   row.CreatedBy,
	}
	if tx.Category == "" {
		tx.Category = models.CategoryOther
	}
	if tx.CreatedBy == "" {
		tx.CreatedBy = models.CreatedByImported
	}
	return tx, nil
}

func headerIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		name := strings.ToLower(strings.Trim(strings.TrimSpace(h), `"`))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}
	return columns, nil
}

func parseImportDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range importDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, field+" is required")
		case "numeric":
			reasons = append(reasons, fmt.Sprintf("amount %q is not a number", fe.Value()))
		case "cash_type":
			reasons = append(reasons, fmt.Sprintf("type %q must be cash-in or cash-out", fe.Value()))
		default:
			reasons = append(reasons, field+" is invalid")
		}
	}
	return errors.New(strings.Join(reasons, "; "))
}

func blank(record []string) bool {
	return !slices.ContainsFunc(record, func(v string) bool { return strings.TrimSpace(v) != "" })
}
