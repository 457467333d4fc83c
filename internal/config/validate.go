package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError reports a config document that failed a syntax or value
// check.
type ValidationError struct {
	FilePath string
	// Line is set for syntax errors.
	Line int
	// Field is the config path of the first offending value, e.g.
	// "hooks[ci].stages[0].tasks[1].mode".
	Field   string
	Message string
	// Problems holds "field: message" for every offending value.
	Problems []string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	case len(e.Problems) > 1:
		return fmt.Sprintf("%s: %s", e.FilePath, strings.Join(e.Problems, "; "))
	case e.Field != "":
		return fmt.Sprintf("%s: %s %s", e.FilePath, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

var yamlLineRe = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// validateYAMLSyntax parses data as a YAML node tree. Blank documents are
// valid and fall back to defaults.
func validateYAMLSyntax(data []byte, filePath string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	err := yaml.Unmarshal(data, &node)
	if err == nil {
		return nil
	}

	vErr := &ValidationError{FilePath: filePath, Message: err.Error()}
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		vErr.Line, _ = strconv.Atoi(m[1])
		vErr.Message = m[2]
	}
	return vErr
}

// newValidator names fields by their koanf key so errors read like the
// config file.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateValues checks cfg against its struct tags and reports every
// offending value.
func validateValues(cfg *Configuration, filePath string) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	vErr := &ValidationError{FilePath: filePath}
	for i, fe := range fieldErrs {
		field, msg := fieldPath(fe), describe(fe)
		if i == 0 {
			vErr.Field, vErr.Message = field, msg
		}
		vErr.Problems = append(vErr.Problems, field+" "+msg)
	}
	return vErr
}

// fieldPath drops the root struct name from the error namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
