package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/pkg/logger"
	"github.com/kiyora/animehub/pkg/storage"
)

// RecordDonation opens a checkout session with the payment provider and
// stores a pending donation pointing at it.
func (m Manager) RecordDonation(ctx context.Context, userID primitive.ObjectID, amountCents int64, currency string) (*storage.Donation, error) {
	if amountCents <= 0 {
		return nil, ValidationError{Reason: "donation amount must be positive"}
	}
	if currency == "" {
		currency = "usd"
	}

	if _, err := m.storage.GetUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "user", ID: userID.Hex()}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	session, err := m.payments.CreateSession(ctx, amountCents, currency)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	id, err := m.storage.CreateDonation(ctx, storage.Donation{
		UserID:      userID,
		AmountCents: amountCents,
		Currency:    currency,
		SessionID:   session.ID,
		Status:      storage.DonationPending,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	return m.storage.GetDonation(ctx, id)
}

// AdFreeStatus reports whether a user has donated their way out of ads.
type AdFreeStatus struct {
	AdFree    bool       `json:"adFree"`
	GrantedAt *time.Time `json:"grantedAt,omitempty"`
}

func (m Manager) GetAdFreeStatus(ctx context.Context, userID primitive.ObjectID) (*AdFreeStatus, error) {
	user, err := m.storage.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "user", ID: userID.Hex()}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &AdFreeStatus{AdFree: user.AdFree, GrantedAt: user.AdFreeGrantedAt}, nil
}

// CompleteDonation confirms a pending donation against the provider and
// grants the donor ad-free status. Completing an already-completed donation
// is a no-op, so the provider can retry its callback safely.
func (m Manager) CompleteDonation(ctx context.Context, donationID primitive.ObjectID) (*storage.Donation, error) {
	log := logger.FromCtx(ctx)

	donation, err := m.storage.GetDonation(ctx, donationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "donation", ID: donationID.Hex()}
		}
		return nil, fmt.Errorf("get donation: %w", err)
	}

	if donation.Status == storage.DonationCompleted {
		return donation, nil
	}

	completed, err := m.payments.SessionCompleted(ctx, donation.SessionID)
	if err != nil {
		return nil, fmt.Errorf("check checkout session: %w", err)
	}
	if !completed {
		return nil, ValidationError{Reason: "payment has not completed"}
	}

	now := time.Now()
	if err := m.storage.UpdateDonationStatus(ctx, donation.ID, storage.DonationCompleted, &now); err != nil {
		return nil, fmt.Errorf("update donation: %w", err)
	}

	if err := m.storage.GrantAdFree(ctx, donation.UserID, now); err != nil {
		return nil, fmt.Errorf("grant ad-free: %w", err)
	}

	log.Info("donation completed",
		zap.String("donation", donation.ID.Hex()),
		zap.String("user", donation.UserID.Hex()),
		zap.Int64("amountCents", donation.AmountCents))

	return m.storage.GetDonation(ctx, donation.ID)
}
