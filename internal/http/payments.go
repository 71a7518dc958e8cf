package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"userhub/internal/domain"
	"userhub/internal/service"
)

var errPaymentForbidden = domain.NewForbiddenError("payment belongs to another user")

type stripeRequest struct {
	TransactionID string         `json:"transactionId" binding:"required"`
	Amount        int64          `json:"amount" binding:"gt=0"`
	Currency      string         `json:"currency" binding:"required,len=3"`
	Metadata      map[string]any `json:"metadata"`
}

type appleRequest struct {
	TransactionID         string         `json:"transactionId" binding:"required"`
	OriginalTransactionID string         `json:"originalTransactionId"`
	ProductID             string         `json:"productId" binding:"required"`
	ReceiptData           string         `json:"receiptData"`
	Metadata              map[string]any `json:"metadata"`
}

type googleRequest struct {
	OrderID        string         `json:"orderId" binding:"required"`
	PackageName    string         `json:"packageName" binding:"required"`
	ProductID      string         `json:"productId" binding:"required"`
	PurchaseToken  string         `json:"purchaseToken" binding:"required"`
	SubscriptionID string         `json:"subscriptionId"`
	Metadata       map[string]any `json:"metadata"`
}

type refundRequest struct {
	Reason   string         `json:"reason"`
	Metadata map[string]any `json:"metadata"`
}

type disputeRequest struct {
	TransactionID string         `json:"transactionId" binding:"required"`
	DisputeID     string         `json:"disputeId" binding:"required"`
	Reason        string         `json:"reason"`
	Status        string         `json:"status" binding:"required,oneof=opened under_review won lost"`
	Amount        *int64         `json:"amount"`
	Metadata      map[string]any `json:"metadata"`
}

func (h *Handler) verifyStripe(c *gin.Context) {
	var req stripeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.payments.VerifyStripe(c.Request.Context(), service.VerifyStripeInput{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		UserID:        currentUserID(c),
		Metadata:      req.Metadata,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

func (h *Handler) verifyApple(c *gin.Context) {
	var req appleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.payments.VerifyApple(c.Request.Context(), service.VerifyAppleInput{
		TransactionID:         req.TransactionID,
		OriginalTransactionID: req.OriginalTransactionID,
		ProductID:             req.ProductID,
		UserID:                currentUserID(c),
		ReceiptData:           req.ReceiptData,
		Metadata:              req.Metadata,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

func (h *Handler) verifyGoogle(c *gin.Context) {
	var req googleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.payments.VerifyGoogle(c.Request.Context(), service.VerifyGoogleInput{
		OrderID:        req.OrderID,
		PackageName:    req.PackageName,
		ProductID:      req.ProductID,
		PurchaseToken:  req.PurchaseToken,
		UserID:         currentUserID(c),
		SubscriptionID: req.SubscriptionID,
		Metadata:       req.Metadata,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

// ownPayment loads a payment and rejects callers that do not own it.
func (h *Handler) ownPayment(c *gin.Context) (*domain.Payment, bool) {
	p, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return nil, false
	}
	if p.UserID != currentUserID(c) {
		h.abortWithError(c, errPaymentForbidden)
		return nil, false
	}
	return p, true
}

func (h *Handler) getPayment(c *gin.Context) {
	p, ok := h.ownPayment(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, p)
}

func (h *Handler) listUserPayments(c *gin.Context) {
	userID := c.Param("id")
	if userID != currentUserID(c) {
		h.abortWithError(c, domain.NewForbiddenError("cannot list payments of another user"))
		return
	}
	list, err := h.payments.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

func (h *Handler) refundPayment(c *gin.Context) {
	var req refundRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, ok := h.ownPayment(c)
	if !ok {
		return
	}
	res, err := h.payments.Refund(c.Request.Context(), service.RefundInput{
		PaymentID: p.ID,
		Reason:    req.Reason,
		Metadata:  req.Metadata,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (h *Handler) handleDispute(c *gin.Context) {
	var req disputeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.payments.HandleDispute(c.Request.Context(), service.DisputeInput{
		ProviderTransactionID: req.TransactionID,
		DisputeID:             req.DisputeID,
		Reason:                req.Reason,
		Status:                domain.DisputeStatus(req.Status),
		Amount:                req.Amount,
		Metadata:              req.Metadata,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}
