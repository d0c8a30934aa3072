package downloader

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// requestValidator checks DownloadRequest tags and renders failures in English.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var loadValidator = sync.OnceValues(func() (*requestValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	translator, ok := ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		return nil, errors.New("loading en translator")
	}
	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return nil, fmt.Errorf("registering translations: %w", err)
	}

	// Report fields by their json names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &requestValidator{validate: v, translator: translator}, nil
})

// FieldError is a validation failure of a single request field.
type FieldError struct {
	Field string
	Err   string
}

// FieldErrors lists every failing field of a request.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

// check validates the request against its declared tags. Failures wrap
// ErrInvalidRequest and carry FieldErrors.
func (r *DownloadRequest) check() error {
	rv, err := loadValidator()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	err = rv.validate.Struct(r)
	if err == nil {
		return nil
	}

	verrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	fields := make(FieldErrors, 0, len(verrors))
	for _, verror := range verrors {
		fields = append(fields, FieldError{
			Field: verror.Field(),
			Err:   rv.message(verror),
		})
	}

	return fmt.Errorf("%w: %w", ErrInvalidRequest, fields)
}

func (rv *requestValidator) message(verror validator.FieldError) string {
	switch verror.Tag() {
	case "required":
		return "This field is required"
	case "http_url":
		return "must be an http or https URL"
	default:
		return verror.Translate(rv.translator)
	}
}
