package billing

import (
	"time"

	"github.com/google/uuid"
)

// Subscription status values as the billing engine reports them.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// SubscriptionStatus is a read-only projection of the billing engine's
// state for one participant. This subsystem never writes this table.
type SubscriptionStatus struct {
	ParticipantID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status           string    `gorm:"type:varchar(20);not null"`
	AmountDueCents   int64     `gorm:"not null;default:0"`
	PaymentReference *string   `gorm:"type:varchar(120)"`
	UpdatedAt        time.Time `gorm:"not null;default:now()"`
}

func (SubscriptionStatus) TableName() string {
	return "subscription_statuses"
}
