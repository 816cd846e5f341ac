package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail    = "EMAIL"
	ChannelWhatsApp = "WHATSAPP"
)

const (
	NotificationPending = "PENDING"
	NotificationSent    = "SENT"
	NotificationFailed  = "FAILED"
)

// NotificationLog records every outgoing message and its delivery state.
type NotificationLog struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TenantID      uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Channel       string     `json:"channel" db:"channel"`
	Recipient     string     `json:"recipient" db:"recipient"`
	Subject       *string    `json:"subject" db:"subject"`
	Message       string     `json:"message" db:"message"`
	Status        string     `json:"status" db:"status"`
	Error         *string    `json:"error" db:"error"`
	Attempts      int        `json:"attempts" db:"attempts"`
	ReferenceType *string    `json:"reference_type" db:"reference_type"`
	ReferenceID   *uuid.UUID `json:"reference_id" db:"reference_id"`
	SentAt        *time.Time `json:"sent_at" db:"sent_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type NotificationFilter struct {
	Channel *string
	Status  *string
	Limit   int
	Offset  int
}

type SendEmailInput struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

type SendWhatsAppInput struct {
	Phone   string `json:"phone" validate:"required,min=10,max=20"`
	Message string `json:"message" validate:"required,max=4096"`
}

// Notification is a message ready to be queued.
type Notification struct {
	Channel       string
	Recipient     string
	Subject       *string
	Message       string
	ReferenceType *string
	ReferenceID   *uuid.UUID
}
