package controllers

import (
	"net/http"

	"kiranaledger/internal/models/request_models"
	"kiranaledger/internal/services"
	"kiranaledger/pkg/utils"

	"github.com/gin-gonic/gin"
)

type WebhookController struct {
	confirmationService services.ConfirmationServiceInterface
}

func NewWebhookController(confirmationService services.ConfirmationServiceInterface) *WebhookController {
	return &WebhookController{
		confirmationService: confirmationService,
	}
}

// HandleInboundMessage processes a customer reply from the messaging
// provider. Always acknowledged with 200 once parsed so the provider does
// not retry-storm; redeliveries are idempotent at the service layer.
func (w *WebhookController) HandleInboundMessage(c *gin.Context) {
	var request request_models.InboundMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	outcome, err := w.confirmationService.HandleInboundReply(
		c.Request.Context(), request.From, request.Body, request.MessageID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, outcome, "Reply processed")
}
