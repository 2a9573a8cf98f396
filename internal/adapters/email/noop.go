package email

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// NoopSender is a no-op email sender for development and testing.
// It logs sends but does not actually deliver emails.
type NoopSender struct {
	log logrus.FieldLogger
	now func() time.Time
}

// NewNoopSender creates a new NoopSender. A nil logger uses the standard logger.
func NewNoopSender(log logrus.FieldLogger) *NoopSender {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &NoopSender{log: log, now: time.Now}
}

// Send logs the email but does not deliver it.
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	sentAt := s.now()
	s.log.WithFields(logrus.Fields{"to": req.To, "subject": req.Subject}).Info("noop_email_send")
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", sentAt.UnixNano()),
		SentAt:    sentAt,
	}, nil
}

// SendBatch logs the batch but does not deliver.
func (s *NoopSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	return sendEach(ctx, s, reqs)
}
