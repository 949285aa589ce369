package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/internal/worker"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	sent []sent
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{to, subject, text, html})
	return nil
}

func newHandler(s *fakeSender) *worker.UserEventHandler {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &worker.UserEventHandler{Mailer: s, CompanyName: "Mexyapp", Logger: l}
}

func body(t *testing.T, ev application.UserEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestHandle_RegisteredSendsWelcome(t *testing.T) {
	s := &fakeSender{}
	h := newHandler(s)
	ev := application.UserEvent{Type: application.EventUserRegistered, UserID: "u-1", Username: "ana", Email: "ana@shop.com", OccurredAt: time.Now()}

	if got := h.Handle(context.Background(), application.EventUserRegistered, body(t, ev), false); got != worker.Ack {
		t.Fatalf("outcome = %v", got)
	}
	if len(s.sent) != 1 {
		t.Fatalf("sent = %d", len(s.sent))
	}
	m := s.sent[0]
	if m.to != "ana@shop.com" || !strings.Contains(m.subject, "ana") || m.html == "" {
		t.Errorf("message = %+v", m)
	}
}

func TestHandle_TypeFallsBackToBody(t *testing.T) {
	s := &fakeSender{}
	ev := application.UserEvent{Type: application.EventUserRegistered, UserID: "u-1", Username: "ana", Email: "ana@shop.com"}
	if got := newHandler(s).Handle(context.Background(), "", body(t, ev), false); got != worker.Ack || len(s.sent) != 1 {
		t.Fatalf("outcome = %v, sent = %d", got, len(s.sent))
	}
}

func TestHandle_Outcomes(t *testing.T) {
	registered := application.UserEvent{Type: application.EventUserRegistered, UserID: "u-1", Username: "ana", Email: "ana@shop.com"}
	tests := []struct {
		name        string
		msgType     string
		body        []byte
		sendErr     error
		redelivered bool
		want        worker.Outcome
	}{
		{name: "malformed", msgType: application.EventUserRegistered, body: []byte("{"), want: worker.Drop},
		{name: "no email", msgType: application.EventUserRegistered, body: body(t, application.UserEvent{UserID: "u-1"}), want: worker.Drop},
		{name: "send fails first time", msgType: application.EventUserRegistered, body: body(t, registered), sendErr: errors.New("503"), want: worker.Retry},
		{name: "send fails again", msgType: application.EventUserRegistered, body: body(t, registered), sendErr: errors.New("503"), redelivered: true, want: worker.Drop},
		{name: "deleted", msgType: application.EventUserDeleted, body: body(t, application.UserEvent{Type: application.EventUserDeleted, UserID: "u-1"}), want: worker.Ack},
		{name: "unknown type", msgType: "user.renamed", body: body(t, application.UserEvent{UserID: "u-1"}), want: worker.Ack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&fakeSender{err: tt.sendErr})
			if got := h.Handle(context.Background(), tt.msgType, tt.body, tt.redelivered); got != tt.want {
				t.Errorf("outcome = %v, want %v", got, tt.want)
			}
		})
	}
}
