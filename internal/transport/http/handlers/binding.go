package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const malformedJSONMessage = "Malformed JSON request"

var registerValidatorOnce sync.Once

// ConfigureValidator reports field errors under their JSON names and adds the
// notblank rule. Safe to call more than once.
func ConfigureValidator() {
	registerValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

type validationMessenger interface {
	validationMessages() map[string]string
}

// bindJSON decodes the body into req and writes the 400 response itself when
// that fails, returning false.
func bindJSON(c *gin.Context, req any) bool {
	ConfigureValidator()

	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, malformedJSONMessage))
		return false
	}

	var messages map[string]string
	if m, ok := req.(validationMessenger); ok {
		messages = m.validationMessages()
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if msg, ok := messages[field+"."+fe.Tag()]; ok {
			out[field] = msg
			continue
		}
		out[field] = field + " is invalid"
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: out, Message: "Validation failed"})
	return false
}

// pathID parses the :id parameter, answering 400 with invalidMessage on failure.
func pathID(c *gin.Context, invalidMessage string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, invalidMessage))
		return 0, false
	}
	return id, true
}
