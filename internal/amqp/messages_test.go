package amqp

import (
	"testing"
	"time"
)

func TestNewInvoiceRenderMessage(t *testing.T) {
	invoiceID := int64(12345)

	msg := NewInvoiceRenderMessage(invoiceID)

	if msg.InvoiceID != invoiceID {
		t.Errorf("NewInvoiceRenderMessage() InvoiceID = %v, want %v", msg.InvoiceID, invoiceID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewInvoiceRenderMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewInvoiceRenderMessage() Timestamp should be recent")
	}
}

func TestInvoiceRenderMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &InvoiceRenderMessage{
		InvoiceID: 12345,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := InvoiceRenderMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("InvoiceRenderMessageFromJSON() error = %v", err)
	}

	if parsedMsg.InvoiceID != msg.InvoiceID {
		t.Errorf("Parsed InvoiceID = %v, want %v", parsedMsg.InvoiceID, msg.InvoiceID)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestInvoiceRenderMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"invoice_id": "not_a_number"}`)

	_, err := InvoiceRenderMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("InvoiceRenderMessageFromJSON() should fail with invalid JSON")
	}
}
