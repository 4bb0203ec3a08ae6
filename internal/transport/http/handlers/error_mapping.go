package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/tourism-api/internal/usecase"
)

// UnexpectedErrorMessage is the body of every unmapped 500.
const UnexpectedErrorMessage = "An unexpected error occurred"

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
// Validation errors always answer 400 with their own message. Unmapped errors are
// attached to the gin context so the access log records them.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	if verr, ok := usecase.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, verr.Message))
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	_ = c.Error(err)
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

func respondUnexpected(c *gin.Context, err error, cases ...ErrorCase) {
	RespondWithMappedError(c, err, cases, http.StatusInternalServerError, UnexpectedErrorMessage)
}
