package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain"
	"userhub/internal/service"
)

func TestPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.login(t, "payer@b.com")

	body := map[string]any{"transactionId": "pi_1", "amount": 1299, "currency": "usd"}
	rec := s.do(t, http.MethodPost, "/v1/payments/stripe", body, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p domain.Payment
	decodeData(t, rec, &p)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, domain.PaymentStatusCompleted, p.Status)

	rec = s.do(t, http.MethodPost, "/v1/payments/stripe", body, token)
	var again domain.Payment
	decodeData(t, rec, &again)
	assert.Equal(t, p.ID, again.ID)

	rec = s.do(t, http.MethodGet, "/v1/payments/"+p.ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/users/"+userID+"/payments", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list service.PaymentList
	decodeData(t, rec, &list)
	assert.Equal(t, 1, list.Total)

	rec = s.do(t, http.MethodPost, "/v1/payments/"+p.ID+"/refund", map[string]any{"reason": "requested"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refund service.RefundResult
	decodeData(t, rec, &refund)
	assert.Equal(t, "refund_pi_1", refund.RefundID)
	assert.Equal(t, domain.PaymentStatusRefunded, refund.Payment.Status)
}

func TestPaymentValidationAndOwnership(t *testing.T) {
	s := newTestServer(t)
	ownerID, owner := s.login(t, "owner@b.com")
	_, other := s.login(t, "other@b.com")

	requireError(t, s.do(t, http.MethodPost, "/v1/payments/stripe", map[string]any{"amount": 1, "currency": "usd"}, owner),
		http.StatusBadRequest, "VALIDATION_ERROR", "transactionId is required")
	requireError(t, s.do(t, http.MethodPost, "/v1/payments/stripe", map[string]any{"transactionId": "x", "amount": 0, "currency": "usd"}, owner),
		http.StatusBadRequest, "VALIDATION_ERROR", "amount must be greater than 0")
	requireError(t, s.do(t, http.MethodPost, "/v1/payments/google", map[string]any{"orderId": "GPA.1"}, owner),
		http.StatusBadRequest, "VALIDATION_ERROR", "packageName is required")

	rec := s.do(t, http.MethodPost, "/v1/payments/apple", map[string]any{"transactionId": "1", "productId": "pro"}, owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p domain.Payment
	decodeData(t, rec, &p)

	requireError(t, s.do(t, http.MethodGet, "/v1/payments/"+p.ID, nil, other), http.StatusForbidden, "FORBIDDEN", "")
	requireError(t, s.do(t, http.MethodPost, "/v1/payments/"+p.ID+"/refund", map[string]any{}, other), http.StatusForbidden, "FORBIDDEN", "")
	requireError(t, s.do(t, http.MethodGet, "/v1/users/"+ownerID+"/payments", nil, other), http.StatusForbidden, "FORBIDDEN", "")
	requireError(t, s.do(t, http.MethodGet, "/v1/payments/missing", nil, owner), http.StatusNotFound, "NOT_FOUND", "Payment not found")
}

func TestDispute(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "d@b.com")

	rec := s.do(t, http.MethodPost, "/v1/payments/stripe", map[string]any{"transactionId": "pi_d", "amount": 50, "currency": "eur"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	requireError(t, s.do(t, http.MethodPost, "/v1/payments/disputes", map[string]any{"transactionId": "pi_d", "disputeId": "dp", "status": "maybe"}, token),
		http.StatusBadRequest, "VALIDATION_ERROR", "status must be one of: opened under_review won lost")

	rec = s.do(t, http.MethodPost, "/v1/payments/disputes", map[string]any{"transactionId": "pi_d", "disputeId": "dp", "status": "lost"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p domain.Payment
	decodeData(t, rec, &p)
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status)
}
