package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// structValidator returns the shared validator. Field names are reported by
// their koanf key so errors point at the config path.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(validateNetworkBaseURL, NetworkConfig{})
		validate = v
	})
	return validate
}

// Validate checks cfg and returns a ConfigError, or several joined, describing
// every invalid field.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	var errs []error
	if err := structValidator().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, toConfigError(fe))
		}
	}

	if err := cfg.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("observability: %w", err))
	}
	return errors.Join(errs...)
}

func validateNetworkBaseURL(sl validator.StructLevel) {
	n, ok := sl.Current().Interface().(NetworkConfig)
	if !ok {
		return
	}
	if n.ResolvedBaseURL() == "" {
		if len(n.Environments) > 0 {
			sl.ReportError(n.Environments, "environments", "Environments", "stage", n.Stage)
			return
		}
		sl.ReportError(n.BaseURL, "baseurl", "BaseURL", "required", "")
	}
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func toConfigError(fe validator.FieldError) *ConfigError {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(field)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	case "url":
		return NewInvalidFieldError(field, fmt.Sprintf("%q is not a valid url", fmt.Sprint(fe.Value())), nil)
	case "stage":
		return NewInvalidFieldError(field, fmt.Sprintf("no base url for stage %q", fe.Param()), nil)
	case "gte", "lte":
		return NewInvalidFieldError(field, fmt.Sprintf("must be %s %s", comparison(fe.Tag()), fe.Param()), nil)
	default:
		return NewInvalidFieldError(field, fmt.Sprintf("failed %s validation", fe.Tag()), nil)
	}
}

func comparison(tag string) string {
	if tag == "gte" {
		return ">="
	}
	return "<="
}
