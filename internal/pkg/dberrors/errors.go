package dberrors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

// IsNoRows reports whether err means the query matched nothing
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Wrap turns a driver error into a StorageError for op. Context cancellation
// and application errors are returned untouched.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// Domain errors raised inside a transaction keep their type
	if apperrors.Is(err, apperrors.ErrStorage,
		apperrors.ErrResourceNotFound,
		apperrors.ErrValidationFailed,
		apperrors.ErrConflict,
		apperrors.ErrIncompleteSubmission,
		apperrors.ErrRendererUnavailable) {
		return err
	}
	return apperrors.NewStorageError(op, err)
}
