package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	plateRe      = regexp.MustCompile(`^[A-Za-z0-9 -]{6,10}$`)
)

// registerValidations teaches gin's validator the json field names and the
// custom rules used by the request structs.
func registerValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
			return plateRe.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
}

// bindJSON decodes the body into dst. It answers the request itself and
// returns false when decoding or validation fails.
func bindJSON(ctx *gin.Context, dst any) bool {
	err := ctx.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := map[string][]string{}
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], describe(fe))
		}
		respondValidation(ctx, fields)
		return false
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		respondValidation(ctx, map[string][]string{typeErr.Field: {"has an invalid type"}})
		return false
	}

	respondError(ctx, http.StatusBadRequest, "invalid request payload")
	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "plate":
		return "must be a valid plate"
	case "email":
		return "must be a valid email address"
	case "numeric":
		return "must contain only digits"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	}
	return "is invalid"
}
