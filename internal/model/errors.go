package model

import (
	"errors"
	"fmt"
)

// Ошибки, которые вызывающая сторона может показать пользователю
var (
	ErrQuotaExceeded      = errors.New("weekly booking quota reached")
	ErrSlotTaken          = errors.New("slot already taken")
	ErrCapacityExceeded   = errors.New("connection is full")
	ErrForbidden          = errors.New("not allowed")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var known = []error{
	ErrQuotaExceeded,
	ErrSlotTaken,
	ErrCapacityExceeded,
	ErrForbidden,
	ErrNotFound,
	ErrInvalidInput,
	ErrStorageUnavailable,
}

// Classify keeps known errors as they are and wraps everything else
// in ErrStorageUnavailable. The original cause stays in the chain.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// Kind returns a stable machine-readable code for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "storage_unavailable"
	}
}
