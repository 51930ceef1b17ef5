package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/weddingrsvp/rsvp/domain"
)

// abortWithDetail ends the request with a {"detail": ...} body.
func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// abortWithError maps err onto a status code. notFound is the detail used for domain.ErrNotFound.
func abortWithError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		abortWithDetail(c, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrInvalidFamily):
		abortWithDetail(c, http.StatusBadRequest, "Target family not found")
	default:
		c.Error(err)
		abortWithDetail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// abortWithBindError reports a request body that failed to decode or validate.
func abortWithBindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid value for %s: %v", fe.Field(), fe.Value()))
		return
	}
	abortWithDetail(c, http.StatusBadRequest, "Invalid request body")
}

// idParam reads a numeric path parameter, aborting with notFound when it is not a number.
func idParam(c *gin.Context, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithDetail(c, http.StatusNotFound, notFound)
		return 0, false
	}
	return id, true
}
