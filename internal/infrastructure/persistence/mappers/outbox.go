package mappers

import (
	"payflow/internal/domain/outbox"
	"payflow/internal/infrastructure/persistence/models"
)

func OutboxEntryToModel(e *outbox.Entry) *models.PaymentLogModel {
	return &models.PaymentLogModel{
		ID:          e.ID(),
		PaymentID:   e.PaymentID(),
		EventType:   int16(e.EventType()),
		Status:      int16(e.Status()),
		Message:     e.Message(),
		Payload:     e.Payload(),
		RetryCount:  e.RetryCount(),
		NextRetryAt: e.NextRetryAt(),
		CreatedAt:   e.CreatedAt(),
	}
}

func OutboxEntryToDomain(m *models.PaymentLogModel) *outbox.Entry {
	return outbox.ReconstructEntry(
		m.ID,
		m.PaymentID,
		outbox.EventType(m.EventType),
		outbox.Status(m.Status),
		m.Message,
		m.Payload,
		m.RetryCount,
		m.NextRetryAt,
		m.CreatedAt,
	)
}
