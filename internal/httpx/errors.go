package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, HTTPError{Error: msg})
}

func BadRequest(c *gin.Context, msg string) { Abort(c, http.StatusBadRequest, msg) }

func NotFound(c *gin.Context, msg string) { Abort(c, http.StatusNotFound, msg) }

func Forbidden(c *gin.Context) {
	Abort(c, http.StatusForbidden, "you do not have permission to perform this action")
}

func Unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Token realm="api"`)
	Abort(c, http.StatusUnauthorized, msg)
}

// Internal hides err from the client and records it on the context for the
// access log.
func Internal(c *gin.Context, err error) {
	_ = c.Error(err)
	Abort(c, http.StatusInternalServerError, "internal server error")
}

// BindError turns a binding failure into a readable 400 message, naming
// fields by their JSON tag.
func BindError(c *gin.Context, err error) {
	BadRequest(c, ValidationMessage(err))
}

func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid json"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: this field is required", fe.Field())
	case "money":
		return fmt.Sprintf("%s: must be a positive amount with at most 2 decimals", fe.Field())
	case "email":
		return fmt.Sprintf("%s: enter a valid email address", fe.Field())
	case "min", "gt", "gte":
		return fmt.Sprintf("%s: must be at least %s", fe.Field(), minParam(fe))
	case "max", "lte":
		return fmt.Sprintf("%s: must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
}

func minParam(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fe.Param() + " (exclusive)"
	}
	return fe.Param()
}
