package email

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// SMTPConfig holds the relay settings for SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg  SMTPConfig
	log  logrus.FieldLogger
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSMTPSender creates a sender for cfg. Auth is skipped when no username is set.
func NewSMTPSender(cfg SMTPConfig, log logrus.FieldLogger) *SMTPSender {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SMTPSender{
		cfg: cfg,
		log: log,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (s *SMTPSender) message(req SendRequest) *email.Email {
	e := email.NewEmail()
	e.From = req.From
	if e.From == "" {
		e.From = s.cfg.From
	}
	e.To = req.To
	e.Subject = req.Subject
	if req.HTML != "" {
		e.HTML = []byte(req.HTML)
	}
	if req.Text != "" {
		e.Text = []byte(req.Text)
	}
	if req.ReplyTo != "" {
		e.ReplyTo = []string{req.ReplyTo}
	}
	return e
}

// Send delivers one message. The relay call itself is not cancellable; ctx is checked
// before dialling.
func (s *SMTPSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}
	e := s.message(req)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(e, addr, auth); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"to": req.To, "subject": req.Subject}).Error("smtp_send_failed")
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	sentAt := time.Now()
	s.log.WithFields(logrus.Fields{"to": req.To, "subject": req.Subject}).Info("smtp_sent")
	return SendResult{MessageID: fmt.Sprintf("smtp-%d", sentAt.UnixNano()), SentAt: sentAt}, nil
}

// SendBatch sends each message in turn over its own connection.
func (s *SMTPSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	return sendEach(ctx, s, reqs)
}
