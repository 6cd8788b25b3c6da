package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePasswordResetRequested = "auth.password_reset_requested"
	EventTypeMemberCreated          = "team.member_created"
	EventTypeMemberInvited          = "team.member_invited"
)

type PasswordResetRequestedEvent struct {
	BaseEvent
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewPasswordResetRequestedEvent(email, token string, expiresAt time.Time) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: newBase(EventTypePasswordResetRequested),
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt,
	}
}

// MemberCreatedEvent fires when adding a teammate created a brand new account.
type MemberCreatedEvent struct {
	BaseEvent
	CompanyID         int64  `json:"company_id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	TemporaryPassword string `json:"-"`
}

func NewMemberCreatedEvent(companyID int64, email, name, tempPassword string) *MemberCreatedEvent {
	return &MemberCreatedEvent{
		BaseEvent:         newBase(EventTypeMemberCreated),
		CompanyID:         companyID,
		Email:             email,
		Name:              name,
		TemporaryPassword: tempPassword,
	}
}

type MemberInvitedEvent struct {
	BaseEvent
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	InviterName string `json:"inviter_name"`
}

func NewMemberInvitedEvent(companyID int64, companyName, email, name, inviter string) *MemberInvitedEvent {
	return &MemberInvitedEvent{
		BaseEvent:   newBase(EventTypeMemberInvited),
		CompanyID:   companyID,
		CompanyName: companyName,
		Email:       email,
		Name:        name,
		InviterName: inviter,
	}
}

func newBase(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}
