package sqlsession

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTrans "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate     *validator.Validate
	trans        ut.Translator
	validateOnce sync.Once
)

func initValidator() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the configuration key they are read from.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if key := fld.Tag.Get("config"); key != "" {
			return key
		}

		return fld.Name
	})

	loc := en.New()
	uni := ut.New(loc, loc)
	trans, _ = uni.GetTranslator("en")
	_ = enTrans.RegisterDefaultTranslations(validate, trans)
}

func getValidator() *validator.Validate {
	validateOnce.Do(initValidator)

	return validate
}

// ValidationError lists every invalid field of a DBConfig.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	validateOnce.Do(initValidator)

	msgs := make([]string, 0, len(e.Errors))

	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Translate(trans))
	}

	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Errors
}

func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		return &ValidationError{Errors: fieldErrors}
	}

	return err
}
