package server

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/at-ishikawa/outliner/internal/note"
)

type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() (*requestValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("enTranslations.RegisterDefaultTranslations() > %w", err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: validate, translator: trans}, nil
}

// validateRequest maps validation failures to InvalidArgument with one field violation each.
func (v *requestValidator) validateRequest(msg any) *connect.Error {
	err := v.validate.Struct(msg)
	if err == nil {
		return nil
	}
	connectErr := connect.NewError(connect.CodeInvalidArgument, err)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return connectErr
	}

	messages := make([]string, 0, len(validationErrors))
	fieldViolations := make([]*errdetails.BadRequest_FieldViolation, 0, len(validationErrors))
	for _, e := range validationErrors {
		description := e.Translate(v.translator)
		messages = append(messages, description)
		fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       fieldPath(e.Namespace()),
			Description: description,
		})
	}
	connectErr = connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(messages, ", ")))
	if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
		FieldViolations: fieldViolations,
	}); detailErr == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, path, ok := strings.Cut(namespace, "."); ok {
		return path
	}
	return namespace
}

// toConnectError maps repository errors to connect codes.
func toConnectError(err error, procedure string) error {
	if errors.Is(err, note.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	slog.Default().Error("request failed", "procedure", procedure, "error", err)
	return connect.NewError(connect.CodeInternal, err)
}
