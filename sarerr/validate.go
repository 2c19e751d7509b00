package sarerr

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// Validate checks the struct tags of v and wraps the failures in
// ErrInputValidation
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		f := verrs[0]
		return errors.Wrapf(ErrInputValidation, "field '%s' fails '%s' (%v)", f.Namespace(), f.Tag(), f.Value())
	}
	return errors.Wrap(ErrInputValidation, err.Error())
}
