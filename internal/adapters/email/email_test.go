package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// TestNoopSender verifies sends are logged and never fail.
func TestNoopSender(t *testing.T) {
	log, hook := test.NewNullLogger()
	s := NewNoopSender(log)

	results, err := s.SendBatch(context.Background(), []SendRequest{
		{To: []string{"a@example.com"}, Subject: "one"},
		{To: []string{"b@example.com"}, Subject: "two"},
	})
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results=%d, want 2", len(results))
	}
	if len(hook.AllEntries()) != 2 || hook.LastEntry().Message != "noop_email_send" {
		t.Fatalf("entries=%d, last=%v", len(hook.AllEntries()), hook.LastEntry())
	}
	if hook.LastEntry().Data["subject"] != "two" {
		t.Fatalf("subject field=%v", hook.LastEntry().Data["subject"])
	}
}

// TestSendEach_CancelledContext verifies batch sends stop on cancellation.
func TestSendEach_CancelledContext(t *testing.T) {
	log, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewNoopSender(log).SendBatch(ctx, []SendRequest{{To: []string{"a@example.com"}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Fatalf("results=%d, want 0", len(results))
	}
}

// TestSMTPSender_BuildsMessage verifies addressing, bodies and auth selection.
func TestSMTPSender_BuildsMessage(t *testing.T) {
	log, hook := test.NewNullLogger()
	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 2525, Username: "u", Password: "p", From: "desk@example.com"}, log)

	var gotAddr string
	var gotAuth smtp.Auth
	var got *email.Email
	s.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		got, gotAddr, gotAuth = e, addr, auth
		return nil
	}

	_, err := s.Send(context.Background(), SendRequest{
		To: []string{"asha@example.com"}, Subject: "Happy Birthday", HTML: "<p>hi</p>", Text: "hi", ReplyTo: "front@example.com",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "mail.local:2525" {
		t.Errorf("addr=%q", gotAddr)
	}
	if gotAuth == nil {
		t.Error("expected plain auth when a username is set")
	}
	if got.From != "desk@example.com" || got.Subject != "Happy Birthday" || string(got.HTML) != "<p>hi</p>" || string(got.Text) != "hi" {
		t.Errorf("message=%+v", got)
	}
	if len(got.ReplyTo) != 1 || got.ReplyTo[0] != "front@example.com" {
		t.Errorf("reply-to=%v", got.ReplyTo)
	}
	if hook.LastEntry().Message != "smtp_sent" {
		t.Errorf("last log=%q", hook.LastEntry().Message)
	}
}

// TestSMTPSender_Failure verifies relay errors are wrapped and logged.
func TestSMTPSender_Failure(t *testing.T) {
	log, hook := test.NewNullLogger()
	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 25}, log)
	relayErr := errors.New("connection refused")
	var gotAuth smtp.Auth = smtp.PlainAuth("", "x", "y", "z")
	s.send = func(_ *email.Email, _ string, auth smtp.Auth) error {
		gotAuth = auth
		return relayErr
	}

	_, err := s.Send(context.Background(), SendRequest{To: []string{"a@example.com"}})
	if !errors.Is(err, relayErr) {
		t.Fatalf("err=%v, want wrapped relay error", err)
	}
	if gotAuth != nil {
		t.Error("expected no auth without a username")
	}
	if entry := hook.LastEntry(); entry.Level != logrus.ErrorLevel || entry.Message != "smtp_send_failed" {
		t.Fatalf("last log=%v", entry)
	}
}
