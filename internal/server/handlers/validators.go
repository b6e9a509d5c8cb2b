package handlers

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

var registerOnce sync.Once

// RegisterValidators adds the request tags used by this package to gin's validator.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err = v.RegisterValidation("timeofday", validateTimeOfDay); err != nil {
			return
		}
		err = v.RegisterValidation("weekday", validateWeekday)
	})
	return err
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	_, err := models.ParseTimeOfDay(field.String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int() >= 0 && field.Int() <= 6
	default:
		return false
	}
}
