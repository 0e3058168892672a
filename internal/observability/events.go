package observability

// Routing keys for marketplace domain events.
const (
	RoutingMessageSent       = "conversation.message_sent"
	RoutingStatusChanged     = "conversation.status_changed"
	RoutingPaymentProcessed  = "payment.processed"
	RoutingProposalSubmitted = "job.proposal_submitted"
)

type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
