// Package validate checks request bodies against their `validate` struct
// tags and reports problems per field, keyed by JSON name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/fittrack/internal/model"
)

// choices backs the custom tags that accept a fixed list of values.
var choices = map[string][]string{
	"activity_type":  model.ActivityTypes,
	"activity_level": model.ActivityLevels,
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, allowed := range choices {
		val.RegisterValidation(tag, oneOf(allowed))
	}
	return val
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

// Struct returns nil when s is valid, otherwise a message for each failing
// field.
func Struct(s any) map[string]string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return fields
}

// fieldPath drops the top-level struct name: "Onboarding.goal.sleep_goal_hours"
// becomes "goal.sleep_goal_hours".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "ne":
		return fmt.Sprintf("must not be %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "activity_type", "activity_level":
		return fmt.Sprintf("must be one of: %s", strings.Join(choices[fe.Tag()], ", "))
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
