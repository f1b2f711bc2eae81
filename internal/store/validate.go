package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
			return IsBloodGroup(fl.Field().String())
		})
		_ = validate.RegisterValidation("city", func(fl validator.FieldLevel) bool {
			return IsCity(fl.Field().String())
		})
	})
	return validate
}

// Validate checks a payload struct against its validate tags and returns a
// single error naming every offending field.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
}

// IsBloodGroup reports whether g is one of the eight ABO/Rh groups.
func IsBloodGroup(g string) bool {
	return slices.Contains(BloodGroups, g)
}

// IsCity reports whether c is a known district or an alias of one.
func IsCity(c string) bool {
	if _, ok := cityAliases[c]; ok {
		return true
	}
	return slices.Contains(Cities, c)
}
