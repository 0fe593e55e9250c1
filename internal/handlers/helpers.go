package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/services"
)

// maxUploadBytes bounds import bodies.
const maxUploadBytes = 10 << 20

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// flexibleLayouts are tried in order by parseFlexibleTime. Layouts without a
// zone are read in the configured location.
var flexibleLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseFlexibleTime accepts RFC 3339, a datetime-local value or a plain
// date.
func parseFlexibleTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD", s)
}

// parseOptionalTime is parseFlexibleTime for optional request fields; an
// absent or empty value is the zero time.
func parseOptionalTime(s *string, loc *time.Location) (time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return time.Time{}, nil
	}
	t, err := parseFlexibleTime(*s, loc)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return t, nil
}

// Amount is a request amount given either as a JSON number or as a string.
// It stays text until the ledger parses it.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a numeric string")
	}
	*a = Amount(n.String())
	return nil
}

// cashFilterQuery holds the filter parameters of a cash transaction list.
type cashFilterQuery struct {
	DateRange string `form:"date_range" binding:"omitempty,date_range"`
	EntryType string `form:"entry_type" binding:"omitempty,entry_type"`
	Search    string `form:"search"`
}

// loanFilterQuery holds the filter parameters of a loan transaction list.
type loanFilterQuery struct {
	DateRange string `form:"date_range" binding:"omitempty,date_range"`
	EntryType string `form:"entry_type" binding:"omitempty,loan_entry_type"`
	Search    string `form:"search"`
}

func newFilter(dateRange, entryType, search string) ledger.Filter {
	r, _ := ledger.ParseDateRange(dateRange)
	if entryType == "" {
		entryType = ledger.EntryTypeAll
	}
	return ledger.Filter{DateRange: r, EntryType: entryType, SearchTerm: strings.TrimSpace(search)}
}

func parseCashFilter(c *gin.Context) (ledger.Filter, error) {
	var q cashFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return ledger.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return newFilter(q.DateRange, q.EntryType, q.Search), nil
}

func parseLoanFilter(c *gin.Context) (ledger.Filter, error) {
	var q loanFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return ledger.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return newFilter(q.DateRange, q.EntryType, q.Search), nil
}

// readUpload returns the uploaded file: the multipart "file" field when the
// request is a form, the raw body otherwise.
func readUpload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.WrapWithMessage(apperrors.ErrInvalidInput, "could not read upload", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is empty")
	}
	return data, nil
}

// sendFile writes a generated file as a download.
func sendFile(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
