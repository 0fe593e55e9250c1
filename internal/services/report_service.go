package services

import (
	"context"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/report"
)

// reportService builds PDF statements.
type reportService struct {
	ctrl *Controller
}

// NewReportService creates a new ReportServicer.
func NewReportService(ctrl *Controller) ReportServicer {
	return &reportService{ctrl: ctrl}
}

// GenerateReport renders a book as PDF. When the filter is active only the
// matching transactions are listed; the summary always covers the whole book.
func (s *reportService) GenerateReport(_ context.Context, bookID string, filter ledger.Filter) (*ExportFile, error) {
	st := s.ctrl.Snapshot()
	book, ok := st.Book(bookID)
	if !ok {
		return nil, translateError(ledger.ErrBookNotFound)
	}

	now := s.ctrl.Now()
	all := st.BookTransactions(bookID)
	rows := all
	if filter.Active() {
		rows = ledger.ApplyFilters(all, filter, now)
	}

	data, err := report.Render(report.Input{
		BookName:    book.Name,
		Stats:       ledger.ComputeStats(all),
		Entries:     len(all),
		Rows:        rows,
		GeneratedAt: now,
		Location:    s.ctrl.Location(),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrReportFailed, err)
	}

	logger.Get().Infow("report generated", "book_id", bookID, "rows", len(rows), "bytes", len(data))
	return &ExportFile{
		Filename:    report.Filename(book.Name, now),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
