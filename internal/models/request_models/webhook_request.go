package request_models

// InboundMessageRequest is the messaging collaborator's inbound contract.
type InboundMessageRequest struct {
	From      string `json:"from" binding:"required"`
	Body      string `json:"body" binding:"required"`
	MessageID string `json:"messageId"`
}
