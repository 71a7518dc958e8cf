package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"userhub/internal/domain"
)

var errInvalidBody = domain.NewValidationError("invalid request body")

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

func errorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

// abortWithError writes the error envelope. Unclassified errors are logged and
// reported as a generic 500.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	var appErr *domain.Error
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.Status(), errorBody(appErr.Code, appErr.Message))
		return
	}
	h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("INTERNAL_SERVER_ERROR", "An unexpected error occurred"))
}

// bindJSON decodes and validates the request body, writing a 400 on failure.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.abortWithError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return domain.NewValidationError(fieldMessage(verrs[0]))
	}
	return errInvalidBody
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
