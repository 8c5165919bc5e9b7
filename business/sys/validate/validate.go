// Package validate contains the support for validating models.
package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// validate holds the settings and caches for validating request struct values.
var validate *validator.Validate

// translator is a cache of locale and translation information.
var translator ut.Translator

// rpcMethod matches the names the full node registers its RPCs under.
var rpcMethod = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func init() {

	// Instantiate a validator.
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Create a translator for english so the error messages are
	// more human-readable than technical.
	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")

	// Register the english error messages for use.
	en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = fld.Tag.Get("query")
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// RPC method names become a path segment on the node's server.
	validate.RegisterValidation("rpcmethod", func(fl validator.FieldLevel) bool {
		return rpcMethod.MatchString(fl.Field().String())
	})
	validate.RegisterTranslation("rpcmethod", translator,
		func(ut ut.Translator) error {
			return ut.Add("rpcmethod", "{0} must be a lower case RPC method name", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("rpcmethod", fe.Field())
			return t
		},
	)
}

// Check validates the provided model against it's declared tags.
func Check(val any) error {
	if err := validate.Struct(val); err != nil {

		// Use a type assertion to get the real error value.
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		var fields FieldErrors
		for _, verror := range verrors {
			field := FieldError{
				Field: verror.Field(),
				Error: verror.Translate(translator),
			}
			fields = append(fields, field)
		}

		return fields
	}

	return nil
}
