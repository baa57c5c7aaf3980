package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	paymentUsecases "payflow/internal/application/payment/usecases"
	"payflow/internal/shared/logger"
	"payflow/internal/shared/utils"
)

type PaymentHandler struct {
	createPaymentUC   *paymentUsecases.CreatePaymentUseCase
	resolveWebhookUC  *paymentUsecases.ResolveWebhookUseCase
	paymentTimelineUC *paymentUsecases.PaymentTimelineUseCase
	logger            logger.Interface
}

func NewPaymentHandler(
	createPaymentUC *paymentUsecases.CreatePaymentUseCase,
	resolveWebhookUC *paymentUsecases.ResolveWebhookUseCase,
	paymentTimelineUC *paymentUsecases.PaymentTimelineUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		createPaymentUC:   createPaymentUC,
		resolveWebhookUC:  resolveWebhookUC,
		paymentTimelineUC: paymentTimelineUC,
		logger:            logger,
	}
}

type CreatePaymentRequest struct {
	OrderID        uint64 `json:"order_id" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
	Price          string `json:"price" binding:"required"`
	Provider       string `json:"provider" binding:"required"`
	MerchantID     uint64 `json:"merchant_id" binding:"required"`
	SubscriptionID uint64 `json:"subscription_id" binding:"required"`
	EventID        string `json:"event_id" binding:"required"`
	Source         string `json:"source"`
}

type CreatePaymentResponse struct {
	PaymentID  uint64 `json:"payment_id"`
	Status     string `json:"status"`
	PaymentURL string `json:"payment_url,omitempty"`
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := paymentUsecases.CreatePaymentCommand{
		OrderID:        req.OrderID,
		Amount:         req.Amount,
		Price:          req.Price,
		ProviderAlias:  req.Provider,
		MerchantID:     req.MerchantID,
		SubscriptionID: req.SubscriptionID,
		EventID:        req.EventID,
		Source:         req.Source,
	}

	result, err := h.createPaymentUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to create payment", "error", err, "order_id", req.OrderID)
		utils.AppErrorResponse(c, err)
		return
	}

	response := CreatePaymentResponse{
		PaymentID:  result.PaymentID,
		Status:     result.Status,
		PaymentURL: result.PaymentURL,
	}

	if result.AlreadyExists {
		utils.SuccessResponse(c, http.StatusOK, "payment already exists", response)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "payment created successfully", response)
}

type WebhookRequest struct {
	PaymentID uint64 `json:"payment_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// HandleWebhook applies a provider status report. It answers 200 for
// unknown payments and replays so the provider stops retrying; only a
// malformed body or a store failure is an error.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind webhook", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := paymentUsecases.ResolveWebhookCommand{
		PaymentID:      req.PaymentID,
		ReportedStatus: req.Status,
	}

	result, err := h.resolveWebhookUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to resolve webhook", "error", err, "payment_id", req.PaymentID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, result.Message, gin.H{
		"payment_id": result.PaymentID,
		"status":     result.Status,
		"applied":    result.Applied,
	})
}

func (h *PaymentHandler) GetTimeline(c *gin.Context) {
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid payment id")
		return
	}

	entries, err := h.paymentTimelineUC.Execute(c.Request.Context(), paymentID)
	if err != nil {
		h.logger.Errorw("failed to load payment timeline", "error", err, "payment_id", paymentID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "timeline retrieved successfully", entries)
}
