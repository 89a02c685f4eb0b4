package ginmw

import (
	"github.com/gin-gonic/gin"

	"apierrmw/pkg/apierr"
)

const stateKey = "apierrmw/state"

// State returns the per-request error state, creating it on first use.
func State(c *gin.Context) *apierr.State {
	if v, ok := c.Get(stateKey); ok {
		if s, ok := v.(*apierr.State); ok {
			return s
		}
	}
	s := &apierr.State{}
	c.Set(stateKey, s)
	return s
}

// SetOverride makes resp the response for the next error on this request.
func SetOverride(c *gin.Context, resp *apierr.ErrorResponse) {
	State(c).SetOverride(resp)
}
