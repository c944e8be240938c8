package amqp

import (
	"encoding/json"
	"time"
)

// InvoiceRenderMessage asks the worker to render the document set for one
// invoice. It carries only the id; the worker loads the invoice from the
// database so the message never goes stale.
type InvoiceRenderMessage struct {
	InvoiceID int64     `json:"invoice_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewInvoiceRenderMessage creates a render request for an invoice id.
func NewInvoiceRenderMessage(invoiceID int64) *InvoiceRenderMessage {
	return &InvoiceRenderMessage{
		InvoiceID: invoiceID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *InvoiceRenderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvoiceRenderMessageFromJSON creates a message from JSON bytes
func InvoiceRenderMessageFromJSON(data []byte) (*InvoiceRenderMessage, error) {
	var msg InvoiceRenderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
