package routegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ConfigError reports invalid configuration fields.
type ConfigError struct {
	// Fields maps a yaml field name to a description of the problem.
	Fields map[string]string

	// Messages lists "field: problem" in validation order.
	Messages []string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + strings.Join(e.Messages, "; ")
}

// Code returns "invalid_config".
func (e *ConfigError) Code() string { return "invalid_config" }

func configError(err error) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	ce := &ConfigError{Fields: make(map[string]string, len(valErrs))}
	for _, ve := range valErrs {
		msg := formatValidationError(ve)
		ce.Fields[ve.Field()] = msg
		ce.Messages = append(ce.Messages, ve.Field()+": "+msg)
	}
	return ce
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "goident":
		return fmt.Sprintf("%q is not a valid Go package name", ve.Value())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// ErrorCode returns the machine-readable code of err, or "" when err does
// not carry one.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
