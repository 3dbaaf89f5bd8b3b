package handlers

import (
	"errors"
	"reflect"
	"strings"

	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report binding failures under the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON binds the body and answers 400 with per-field details on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	details := make([]apierrors.FieldDetail, len(verrs))
	for i, fe := range verrs {
		details[i] = apierrors.FieldDetail{
			Field:   fe.Field(),
			Message: describeTag(fe),
		}
	}
	apierrors.BadRequestWithDetails(c, "Validation failed", details)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// respondFieldError answers 400 for service-level validation failures and
// reports whether err was one.
func respondFieldError(c *gin.Context, err error) bool {
	var fe *services.FieldError
	if !errors.As(err, &fe) {
		return false
	}
	apierrors.BadRequestWithDetails(c, fe.Message, []apierrors.FieldDetail{{
		Field:   fe.Field,
		Message: fe.Message,
	}})
	return true
}
