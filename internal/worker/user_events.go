package worker

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	mailtpl "github.com/oksasatya/mexyapp-accounts/pkg/mailer/templates"
)

// Outcome tells the consumer loop how to settle a delivery.
type Outcome int

const (
	Ack Outcome = iota
	// Drop rejects without requeue; the message can never succeed.
	Drop
	// Retry rejects with requeue.
	Retry
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	case Retry:
		return "retry"
	}
	return "unknown"
}

type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// UserEventHandler reacts to user lifecycle events. A registration gets a
// welcome email; other events are only logged.
type UserEventHandler struct {
	Mailer      Sender
	CompanyName string
	SupportURL  string
	Logger      *logrus.Logger
}

// Handle processes one message. A failed send is retried once; a second
// failure on a redelivered message drops it.
func (h *UserEventHandler) Handle(ctx context.Context, msgType string, body []byte, redelivered bool) Outcome {
	var ev application.UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		h.log().WithError(err).Warn("malformed user event")
		return Drop
	}
	if msgType == "" {
		msgType = ev.Type
	}
	entry := h.log().WithFields(logrus.Fields{"type": msgType, "user_id": ev.UserID})

	switch msgType {
	case application.EventUserRegistered:
		if ev.Email == "" {
			entry.Warn("registration event without email")
			return Drop
		}
		subject, text, html, err := mailtpl.Render(mailtpl.Welcome, mailtpl.WelcomeData{
			Username:    ev.Username,
			Email:       ev.Email,
			CompanyName: h.CompanyName,
			SupportURL:  h.SupportURL,
		})
		if err != nil {
			entry.WithError(err).Error("render welcome email failed")
			return Drop
		}
		if err := h.Mailer.Send(ctx, ev.Email, subject, text, html); err != nil {
			entry.WithError(err).Warn("send welcome email failed")
			if redelivered {
				return Drop
			}
			return Retry
		}
		entry.Info("welcome email sent")
		return Ack
	case application.EventUserDeleted:
		entry.Info("user deleted")
		return Ack
	default:
		entry.Debug("ignoring event")
		return Ack
	}
}

func (h *UserEventHandler) log() *logrus.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return logrus.StandardLogger()
}
