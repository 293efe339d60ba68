package repository

import (
	"errors"

	"github.com/amirasaad/accounts/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors.
// Duplicate keys become domain.ErrAlreadyExists, missing records become
// domain.ErrAccountNotFound and anything else is wrapped with domain.ErrStore.
func MapGormErrorToDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrAlreadyExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrAccountNotFound
	default:
		return domain.StoreFailure(err)
	}
}

// WrapError runs a GORM operation and maps its error.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(m).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
