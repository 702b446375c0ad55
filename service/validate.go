package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"taskflow/dao/model"
	"taskflow/errs"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "status", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(model.TaskStatus)
		return ok && s >= model.StatusTodo && s <= model.StatusDone
	})
	mustRegister(v, "priority", func(fl validator.FieldLevel) bool {
		p, ok := fl.Field().Interface().(model.TaskPriority)
		return ok && p >= model.PriorityLow && p <= model.PriorityUrgent
	})
	// OWNER is never granted through membership management
	mustRegister(v, "memberrole", func(fl validator.FieldLevel) bool {
		r, ok := fl.Field().Interface().(model.Role)
		return ok && (r == model.RoleAdmin || r == model.RoleMember)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// checkInput runs the struct tags of in and converts the first failure into a
// validation error. Services call it before any store access or permission
// check.
func checkInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.Validation("invalid input: %v", err)
	}
	return errs.Validation("%s", describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s%s", field, fe.Param(), unit)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s%s", field, fe.Param(), unit)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "status":
		return fmt.Sprintf("%s must be one of TODO, IN_PROGRESS, IN_REVIEW, DONE", field)
	case "priority":
		return fmt.Sprintf("%s must be one of LOW, MEDIUM, HIGH, URGENT", field)
	case "memberrole":
		return fmt.Sprintf("%s must be ADMIN or MEMBER", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
