package handlers

import (
	"errors"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sokomarket/payflow/internal/payment"
	"github.com/sokomarket/payflow/internal/provider"
)

// fail writes a client-fault error (4xx) in the response envelope.
func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "fail", "message": message})
}

// fault writes a server-fault error (5xx). With DEV_MODE=true the
// stack of the calling goroutine is included.
func fault(c *gin.Context, code int, message string) {
	body := gin.H{"status": "error", "message": message}
	if os.Getenv("DEV_MODE") == "true" {
		body["stack"] = string(debug.Stack())
	}
	c.JSON(code, body)
}

// writeError maps known error kinds onto the response envelope.
func writeError(c *gin.Context, err error) {
	var pErr *provider.Error
	switch {
	case errors.Is(err, payment.ErrOrderNotFound):
		fail(c, http.StatusNotFound, "order not found")
	case errors.Is(err, payment.ErrTransactionNotFound):
		fail(c, http.StatusNotFound, "transaction not found")
	case errors.As(err, &pErr):
		if pErr.StatusCode >= 400 && pErr.StatusCode < 500 {
			fail(c, pErr.StatusCode, pErr.Message)
		} else {
			fault(c, http.StatusBadGateway, "payment provider error")
		}
	default:
		fault(c, http.StatusInternalServerError, "something went wrong")
	}
}
