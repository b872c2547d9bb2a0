package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("keysafe", IsKeySafe); err != nil {
		return nil, nil, fmt.Errorf("failed to register keysafe validation: %w", err)
	}
	if err := validate.RegisterTranslation("keysafe", trans, func(ut ut.Translator) error {
		return ut.Add("keysafe", "{0} must not contain path separators or dot segments", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("keysafe", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register keysafe translation: %w", err)
	}

	return validate, trans, nil
}

// IsKeySafe reports whether the field can be used as one segment of a storage key.
func IsKeySafe(fl validator.FieldLevel) bool {
	return KeySafe(fl.Field().String())
}

// KeySafe reports whether s can be used as one segment of a storage key.
func KeySafe(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
