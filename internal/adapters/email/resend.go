package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// resendBatchSize is the Resend batch API limit per call.
const resendBatchSize = 100

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	log    logrus.FieldLogger
}

// NewResendSender creates a new ResendSender with the given API key and default from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
func NewResendSender(apiKey, from string, log logrus.FieldLogger) *ResendSender {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		log:    log,
	}
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = s.from
	}
	p := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
	}
	if req.ReplyTo != "" {
		p.ReplyTo = req.ReplyTo
	}
	return p
}

// Send sends a single email via Resend.
// PRE: req has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"to": req.To, "subject": req.Subject}).Error("resend_send_failed")
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	s.log.WithFields(logrus.Fields{"message_id": sent.Id, "to": req.To, "subject": req.Subject}).Info("resend_sent")
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch sends multiple emails via Resend's batch API in chunks.
// POST: All emails are queued; returns results in the same order as requests
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	var all []SendResult
	for i := 0; i < len(reqs); i += resendBatchSize {
		end := min(i+resendBatchSize, len(reqs))
		chunk := reqs[i:end]

		batch := make([]*resend.SendEmailRequest, 0, len(chunk))
		for _, req := range chunk {
			batch = append(batch, s.params(req))
		}

		resp, err := s.client.Batch.SendWithContext(ctx, batch)
		if err != nil {
			s.log.WithError(err).WithField("batch_size", len(chunk)).Error("resend_batch_failed")
			return all, fmt.Errorf("resend batch send failed: %w", err)
		}
		for _, item := range resp.Data {
			all = append(all, SendResult{MessageID: item.Id, SentAt: time.Now()})
		}
		s.log.WithFields(logrus.Fields{"count": len(chunk), "total_sent": len(all)}).Info("resend_batch_sent")
	}
	return all, nil
}
