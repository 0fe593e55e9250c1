package services

import (
	"errors"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/exchange"
	"cashbook/internal/ledger"
)

// translateError maps ledger and exchange errors onto AppErrors. Anything
// unrecognised becomes an internal error.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, ledger.ErrBookNotFound):
		return apperrors.Wrap(apperrors.ErrBookNotFound, err)
	case errors.Is(err, ledger.ErrLoanBookNotFound):
		return apperrors.Wrap(apperrors.ErrLoanBookNotFound, err)
	case errors.Is(err, ledger.ErrTransactionNotFound):
		return apperrors.Wrap(apperrors.ErrTransactionNotFound, err)
	case errors.Is(err, ledger.ErrLoanTransactionNotFound):
		return apperrors.Wrap(apperrors.ErrLoanTransactionNotFound, err)
	case errors.Is(err, ledger.ErrDuplicateID):
		return apperrors.Wrap(apperrors.ErrDuplicateID, err)
	case errors.Is(err, ledger.ErrInvalidType):
		return apperrors.WrapWithMessage(apperrors.ErrInvalidTransactionType, err.Error(), err)
	case errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, ledger.ErrMissingAmount),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrMissingDescription),
		errors.Is(err, ledger.ErrInvalidReminder),
		errors.Is(err, ledger.ErrMissingID):
		return apperrors.WrapWithMessage(apperrors.ErrInvalidInput, err.Error(), err)
	case errors.Is(err, exchange.ErrNothingToExport):
		return apperrors.Wrap(apperrors.ErrNothingToExport, err)
	case errors.Is(err, exchange.ErrInvalidDocument),
		errors.Is(err, exchange.ErrEmptyCSV),
		errors.Is(err, exchange.ErrMissingHeaders),
		errors.Is(err, exchange.ErrNoValidRows),
		errors.Is(err, ledger.ErrInconsistent):
		return apperrors.WrapWithMessage(apperrors.ErrInvalidImport, err.Error(), err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
