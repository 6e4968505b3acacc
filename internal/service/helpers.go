package service

import (
	"errors"

	"taskly/internal/domain"
)

// isNotFound reports whether err classifies as a missing-resource error.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
