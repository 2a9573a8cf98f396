package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"facilitydesk/internal/domain/membership"
	"facilitydesk/internal/domain/transaction"
)

// PaymentRecorder stores a payment together with the balance change.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, t transaction.Transaction) error
}

// MembershipLookup resolves a membership by ID.
type MembershipLookup interface {
	GetByID(ctx context.Context, id string) (membership.Membership, error)
}

// RecordPaymentInput carries input for the orchestrator.
type RecordPaymentInput struct {
	FacilityID   string
	MemberID     string
	MembershipID string // optional attribution
	Amount       decimal.Decimal
}

// RecordPaymentDeps holds dependencies for RecordPayment.
type RecordPaymentDeps struct {
	TransactionStore PaymentRecorder
	MembershipStore  MembershipLookup
	Now              func() time.Time
}

// ExecuteRecordPayment records a payment and reduces the member's balance.
// PRE: input.Amount > 0; input.MembershipID, when set, names one of the member's memberships
// POST: a payment transaction exists and the member balance dropped by Amount
func ExecuteRecordPayment(ctx context.Context, input RecordPaymentInput, deps RecordPaymentDeps) (transaction.Transaction, error) {
	t := transaction.Transaction{
		ID:           uuid.New().String(),
		FacilityID:   input.FacilityID,
		MemberID:     input.MemberID,
		MembershipID: input.MembershipID,
		Type:         transaction.TypePayment,
		Amount:       input.Amount,
		CreatedAt:    deps.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return transaction.Transaction{}, invalid(err)
	}
	if t.MembershipID != "" {
		ms, err := deps.MembershipStore.GetByID(ctx, t.MembershipID)
		if err != nil {
			return transaction.Transaction{}, err
		}
		if ms.MemberID != t.MemberID {
			return transaction.Transaction{}, fmt.Errorf("membership %s: %w", ms.ID, membership.ErrNotFound)
		}
	}

	if err := deps.TransactionStore.RecordPayment(ctx, t); err != nil {
		return transaction.Transaction{}, err
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": t.ID,
		"member_id":      t.MemberID,
		"amount":         t.Amount.String(),
	}).Info("payment_recorded")
	return t, nil
}
