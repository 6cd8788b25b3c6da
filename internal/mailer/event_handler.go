package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mailDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/maildelivery"
	"github.com/frahmantamala/mastersight/internal/core/events"
)

// Queue is the part of the dispatcher the event handler needs.
type Queue interface {
	Enqueue(job Job) bool
}

type EventHandler struct {
	renderer    *Renderer
	repo        RepositoryAPI
	queue       Queue
	frontendURL string
	logger      *slog.Logger
}

func NewEventHandler(renderer *Renderer, repo RepositoryAPI, queue Queue, frontendURL string, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		renderer:    renderer,
		repo:        repo,
		queue:       queue,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

func (h *EventHandler) HandlePasswordResetRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PasswordResetRequestedEvent)
	if !ok {
		return fmt.Errorf("expected PasswordResetRequestedEvent, got %T", event)
	}
	return h.deliver(ctx, KindPasswordReset, e.Email, passwordResetData{
		Link:      h.frontendURL + "/auth/reset?token=" + e.Token,
		ExpiresIn: expiresIn(time.Until(e.ExpiresAt)),
	})
}

func (h *EventHandler) HandleMemberCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.MemberCreatedEvent)
	if !ok {
		return fmt.Errorf("expected MemberCreatedEvent, got %T", event)
	}
	return h.deliver(ctx, KindAccountCreated, e.Email, accountCreatedData{
		Name:              e.Name,
		Email:             e.Email,
		TemporaryPassword: e.TemporaryPassword,
		Link:              h.frontendURL + "/auth/login",
	})
}

func (h *EventHandler) HandleMemberInvited(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.MemberInvitedEvent)
	if !ok {
		return fmt.Errorf("expected MemberInvitedEvent, got %T", event)
	}
	return h.deliver(ctx, KindMemberInvited, e.Email, memberInvitedData{
		Name:        e.Name,
		InviterName: e.InviterName,
		CompanyName: e.CompanyName,
		Link:        h.frontendURL + "/dashboard/invites",
	})
}

func (h *EventHandler) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypePasswordResetRequested, h.HandlePasswordResetRequested)
	bus.Subscribe(events.EventTypeMemberCreated, h.HandleMemberCreated)
	bus.Subscribe(events.EventTypeMemberInvited, h.HandleMemberInvited)

	h.logger.Info("mail event handlers registered",
		"handlers", []string{
			events.EventTypePasswordResetRequested,
			events.EventTypeMemberCreated,
			events.EventTypeMemberInvited,
		})
}

func (h *EventHandler) deliver(ctx context.Context, kind Kind, to string, data interface{}) error {
	subject, body, err := h.renderer.Render(kind, data)
	if err != nil {
		return err
	}

	d := &mailDatamodel.Delivery{
		Kind:      string(kind),
		Recipient: to,
		Subject:   subject,
		Body:      body,
		Status:    mailDatamodel.StatusPending,
	}
	if err := h.repo.Create(ctx, d); err != nil {
		return fmt.Errorf("persist %s delivery: %w", kind, err)
	}

	queued := h.queue.Enqueue(JobFromDelivery(d))
	h.logger.Info("mail delivery created", "delivery_id", d.ID, "kind", kind, "queued", queued)
	return nil
}

func expiresIn(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	switch {
	case minutes == 60:
		return "1 hora"
	case minutes > 60 && minutes%60 == 0:
		return fmt.Sprintf("%d horas", minutes/60)
	case minutes <= 1:
		return "1 minuto"
	default:
		return fmt.Sprintf("%d minutos", minutes)
	}
}
