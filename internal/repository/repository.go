package repository

import (
	"errors"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"

	"gorm.io/gorm"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Page normalizes a limit/offset pair
type Page struct {
	Limit  int
	Offset int
}

// Normalized applies the default and maximum limit
func (p Page) Normalized() Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// translate maps gorm sentinel errors onto API error kinds
func translate(err error, notFound, conflict string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.KindNotFound, notFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.KindConflict, conflict, err)
	}
	return err
}
