package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

const usernameRetries = 5

// GoogleAuthService reconciles a Google-asserted identity with a local
// account. The provider has already proven email ownership, so accounts it
// touches are enabled without the local confirmation step.
type GoogleAuthService struct {
	users          ports.UserRepository
	tokens         ports.LifecycleTokenService
	codec          ports.SessionCodec
	events         ports.EventPublisher
	confirmURLBase string
	log            zerolog.Logger
}

func NewGoogleAuthService(
	users ports.UserRepository,
	tokens ports.LifecycleTokenService,
	codec ports.SessionCodec,
	events ports.EventPublisher,
	confirmURLBase string,
	log zerolog.Logger,
) *GoogleAuthService {
	return &GoogleAuthService{
		users:          users,
		tokens:         tokens,
		codec:          codec,
		events:         events,
		confirmURLBase: confirmURLBase,
		log:            log,
	}
}

// Process signs a federated identity in, creating the local account when
// none exists for the email. A session token is issued in both branches.
func (s *GoogleAuthService) Process(ctx context.Context, in ports.GoogleAuthInput) (*ports.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.NewValidationError("email", "is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.reconcile(ctx, user, in); err != nil {
			return nil, err
		}
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.createAccount(ctx, email, in)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	token, err := s.codec.Issue(user.ID, user.Username, user.Roles, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// reconcile updates an existing account with the provider's assertions:
// enable it if still unconfirmed, refresh the avatar if it changed.
func (s *GoogleAuthService) reconcile(ctx context.Context, user *domain.User, in ports.GoogleAuthInput) error {
	changed := false

	if !user.Enabled {
		s.log.Info().Str("user_id", user.ID).Msg("enabling unconfirmed account on federated sign-in")
		user.Enabled = true
		changed = true
	}
	if in.PhotoURL != "" && in.PhotoURL != user.ProfileImage {
		user.ProfileImage = in.PhotoURL
		changed = true
	}

	if !changed {
		return nil
	}
	if _, err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update federated account: %w", err)
	}
	return nil
}

func (s *GoogleAuthService) createAccount(ctx context.Context, email string, in ports.GoogleAuthInput) (*domain.User, error) {
	username, err := s.generateUsername(ctx, in.Name)
	if err != nil {
		return nil, err
	}

	// The account can never sign in with this password unless it is reset.
	hash, err := bcrypt.GenerateFromPassword([]byte(randomPassword()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash generated password: %w", err)
	}

	first, last := splitName(in.Name)
	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		ProfileImage: in.PhotoURL,
		Roles:        []string{domain.RoleCustomer},
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.NewValidationError("email", "is already in use")
		}
		return nil, fmt.Errorf("create federated account: %w", err)
	}

	// Issued for audit and tracking only; access does not depend on it.
	token, err := s.tokens.IssueConfirmation(ctx, created)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", created.ID).Msg("failed to issue tracking confirmation token")
	}

	event := domain.UserRegistrationEvent{
		UserID:    created.ID,
		Username:  created.Username,
		Email:     created.Email,
		FirstName: created.FirstName,
		LastName:  created.LastName,
		EventType: domain.EventGoogleUserRegistered,
		Timestamp: time.Now().UnixMilli(),
	}
	if token != nil {
		event.ConfirmationURL = s.confirmURLBase + token.Token
	}
	s.events.Publish(domain.TopicUserRegistration, event)

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("federated account created")
	return created, nil
}

// generateUsername derives a handle from the display name plus a random
// 4-digit suffix, retrying on collision before falling back to a
// timestamp-derived suffix.
func (s *GoogleAuthService) generateUsername(ctx context.Context, name string) (string, error) {
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	if base == "" {
		base = "user"
	}

	for i := 0; i < usernameRetries; i++ {
		candidate := fmt.Sprintf("%s%04d", base, mrand.IntN(10000))
		taken, err := s.users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return fmt.Sprintf("%s%d", base, time.Now().UnixMilli()%10000), nil
}

func randomPassword() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if i := strings.IndexByte(full, ' '); i >= 0 {
		return full[:i], strings.TrimSpace(full[i+1:])
	}
	return full, ""
}
