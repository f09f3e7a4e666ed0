package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"

	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern       = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	pythonModulePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("python_module", func(fl validator.FieldLevel) bool {
			return pythonModulePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("pip_constraint", func(fl validator.FieldLevel) bool {
			_, err := semver.NewConstraint(fl.Field().String())
			return err == nil
		})

		v.RegisterStructValidation(func(sl validator.StructLevel) {
			check := sl.Current().Interface().(CheckSpec)
			hasImport := check.Import != ""
			hasCommand := strings.TrimSpace(check.Command) != ""
			if hasImport == hasCommand {
				sl.ReportError(check.Command, "Command", "Command", "import_xor_command", "")
			}
		}, CheckSpec{})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema validation on a decoded requirements file.
// Spec grammar is not checked here; specs are parsed when they are evaluated.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return pyerrors.NewConfigError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}
	return nil
}

// ValidateSettings checks the merged settings.
func ValidateSettings(s Settings) error {
	if err := validatorInstance().Struct(s); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		if ve.Tag() == "import_xor_command" {
			msg = fmt.Sprintf("%s must set exactly one of import or command", strings.TrimSuffix(field, ".command"))
		}
		return pyerrors.NewConfigError(field, msg, err)
	}

	return pyerrors.NewConfigError("config", err.Error(), err)
}

// yamlishFieldName turns Config.Requirements[1].Check.Import into requirements[1].check.import.
func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, toSnake(part))
	}
	return strings.Join(lowered, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '[' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
