// Package middleware holds gin middleware shared by the HTTP surface:
// request deadlines, rate limiting, request logging, and error-envelope
// rendering (spec §7). CORS and panic recovery are wired in httpapi.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"healthroute/internal/errs"
)

// errorEnvelope is the wire shape for every non-2xx response (spec §6).
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RenderError writes the standard error envelope. If err is a tagged
// *errs.Error its Kind drives both the status and the "error" field;
// otherwise it is treated as an opaque StoreError.
func RenderError(c *gin.Context, status int, err error) {
	kind := string(errs.StoreError)
	message := err.Error()
	if tagged, ok := errs.As(err); ok {
		kind = string(tagged.Kind)
		message = tagged.Message
		status = errs.Status(tagged.Kind)
	}
	c.JSON(status, errorEnvelope{Error: kind, Message: message})
}

// RenderStoreError renders an error from a downstream store/router call.
// If err already carries a Kind (e.g. ServiceUnavailable from a
// pool-acquire timeout) that tag drives the response; otherwise it is
// wrapped as an opaque StoreError with message.
func RenderStoreError(c *gin.Context, message string, err error) {
	if tagged, ok := errs.As(err); ok {
		RenderError(c, errs.Status(tagged.Kind), tagged)
		return
	}
	RenderError(c, http.StatusInternalServerError, errs.Wrap(errs.StoreError, message, err))
}

// Deadline attaches the overall per-request deadline (spec §5): every
// downstream classifier/geocoder/store call inherits this context, and a
// deadline that elapses mid-request surfaces as 504 (spec §7).
func Deadline(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			RenderError(c, http.StatusGatewayTimeout, errs.New(errs.Deadline, "request deadline exceeded"))
		}
	}
}
