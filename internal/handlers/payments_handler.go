package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sokomarket/payflow/internal/payment"
	"github.com/sokomarket/payflow/internal/validation"
)

// PaymentsConfig groups dependencies for the payments routes.
type PaymentsConfig struct {
	Service *payment.Service
	Logger  *logrus.Logger
}

// RegisterPaymentsRoutes registers the payment entrypoints: initiate,
// gateway webhook callback, and status poll.
func RegisterPaymentsRoutes(r *gin.Engine, cfg PaymentsConfig) {
	v := validation.New()

	r.POST("/orders/:orderId/payments", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.InitiatePaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		out, err := cfg.Service.Initiate(ctx, c.Param("orderId"), payment.InitiateInput{
			Provider:      req.Provider,
			Method:        req.Method,
			Amount:        req.Amount,
			Currency:      req.Currency,
			PayerPhone:    req.PayerPhone,
			PaymentNumber: req.PaymentNumber,
		})
		if err != nil {
			cfg.Logger.WithError(err).Error("payment initiation failed")
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"status": "success", "data": out})
	})

	// The gateway retries callbacks it believes failed, so this route
	// answers 200 for every benign anomaly (unknown footprint,
	// replayed terminal status). Only a failure to record the update
	// surfaces as an error, which is exactly the case worth a retry.
	r.POST("/payments/callback", func(c *gin.Context) {
		ctx := c.Request.Context()

		var payload validation.WebhookPayload
		if err := validation.BindAndValidate(c, &payload, v); err != nil {
			return
		}

		if err := cfg.Service.Reconcile(ctx, payload.Footprint, payload.Status); err != nil {
			cfg.Logger.WithError(err).Error("webhook reconciliation failed")
			fault(c, http.StatusInternalServerError, "could not record payment update")
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	r.GET("/payments/:footprint/status", func(c *gin.Context) {
		ctx := c.Request.Context()

		tx, err := cfg.Service.Poll(ctx, c.Param("footprint"))
		if err != nil {
			cfg.Logger.WithError(err).Error("payment status poll failed")
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data": gin.H{
				"transactionId": tx.TransactionID,
				"orderId":       tx.OrderID,
				"txStatus":      tx.Status,
				"txMethod":      tx.TxMethod,
			},
		})
	})
}
