package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

// LifecycleTokenService implements issuance, validation, and consumption of
// confirmation and password-reset tokens.
//
// The two kinds deliberately diverge: Confirm ignores expiry and keeps the
// token record (multi-use, idempotent), ConsumeReset enforces the 24h window
// and deletes the token (strictly single-use).
type LifecycleTokenService struct {
	tokens       ports.TokenRepository
	users        ports.UserRepository
	events       ports.EventPublisher
	resetURLBase string
	log          zerolog.Logger
}

func NewLifecycleTokenService(
	tokens ports.TokenRepository,
	users ports.UserRepository,
	events ports.EventPublisher,
	resetURLBase string,
	log zerolog.Logger,
) *LifecycleTokenService {
	return &LifecycleTokenService{
		tokens:       tokens,
		users:        users,
		events:       events,
		resetURLBase: resetURLBase,
		log:          log,
	}
}

func (s *LifecycleTokenService) issue(ctx context.Context, kind domain.LifecycleTokenKind, user *domain.User) (*domain.LifecycleToken, error) {
	now := time.Now().UTC()
	token := &domain.LifecycleToken{
		Token:     uuid.NewString(),
		Kind:      kind,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.TokenTTL),
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("save %s token: %w", kind, err)
	}
	return token, nil
}

// IssueConfirmation creates a fresh confirmation token. Outstanding tokens
// for the same account are not checked; any of them confirms.
func (s *LifecycleTokenService) IssueConfirmation(ctx context.Context, user *domain.User) (*domain.LifecycleToken, error) {
	return s.issue(ctx, domain.TokenKindConfirmation, user)
}

// IssuePasswordReset creates a reset token and publishes the reset event.
func (s *LifecycleTokenService) IssuePasswordReset(ctx context.Context, user *domain.User) (*domain.LifecycleToken, error) {
	token, err := s.issue(ctx, domain.TokenKindPasswordReset, user)
	if err != nil {
		return nil, err
	}

	s.events.Publish(domain.TopicPasswordReset, domain.PasswordResetEvent{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		EventType: domain.EventPasswordReset,
		ResetURL:  s.resetURLBase + token.Token,
		Timestamp: time.Now().UnixMilli(),
	})

	return token, nil
}

// Confirm flips the bound account's enabled gate. Expiry is not checked and
// the token is kept, so repeated confirmation succeeds with the same result.
func (s *LifecycleTokenService) Confirm(ctx context.Context, token string) error {
	record, err := s.tokens.Find(ctx, domain.TokenKindConfirmation, token)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return fmt.Errorf("confirm token %s: %w", record.Token, err)
	}

	user.Enabled = true
	if _, err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("enable user %s: %w", user.ID, err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("account email confirmed")
	return nil
}

// ValidateReset checks a reset token without consuming it.
func (s *LifecycleTokenService) ValidateReset(ctx context.Context, token string) (*domain.LifecycleToken, error) {
	record, err := s.tokens.Find(ctx, domain.TokenKindPasswordReset, token)
	if err != nil {
		return nil, err
	}
	if record.Expired(time.Now().UTC()) {
		return nil, domain.ErrTokenExpired
	}
	return record, nil
}

// ConsumeReset overwrites the bound account's credential hash and deletes
// the token so a second use fails with domain.ErrInvalidToken.
func (s *LifecycleTokenService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	record, err := s.ValidateReset(ctx, token)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	if _, err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update credential for user %s: %w", user.ID, err)
	}

	if err := s.tokens.Delete(ctx, domain.TokenKindPasswordReset, record.Token); err != nil {
		// The credential change already landed; a stale token record is
		// rejected at next lookup anyway.
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to delete consumed reset token")
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}
