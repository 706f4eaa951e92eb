package httpresponse

import (
	"github.com/gin-gonic/gin"

	"github.com/coreloop/cx/o11y"
)

// HandlerFunc produces either a response or an error from the closed
// taxonomy. Anything else it returns renders as a database error.
type HandlerFunc func(c *gin.Context) (*Response, error)

// Handler adapts fn for gin. The error path is recorded on the request span
// and rendered through Render, which keeps status-code decisions out of the
// handlers themselves.
func Handler(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := fn(c)
		if err != nil {
			o11y.AddField(c.Request.Context(), "handler_error", err)
			Render(err).Write(c)
			return
		}
		resp.Write(c)
	}
}
