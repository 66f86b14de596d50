package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

const minPasswordLength = 6

// AuthService is the authentication engine: credential verification with
// account-state gating, self-registration, and the password-reset flow.
type AuthService struct {
	users          ports.UserRepository
	tokens         ports.LifecycleTokenService
	codec          ports.SessionCodec
	events         ports.EventPublisher
	confirmURLBase string
	log            zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.LifecycleTokenService,
	codec ports.SessionCodec,
	events ports.EventPublisher,
	confirmURLBase string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		codec:          codec,
		events:         events,
		confirmURLBase: confirmURLBase,
		log:            log,
	}
}

// Authenticate verifies credentials and applies the account gates in order:
// not found, not verified, disabled, deleted. Credential-stage failures all
// collapse to domain.ErrInvalidCredentials so the response never reveals
// which part was wrong; the real cause is logged.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.users.FindByEmail(ctx, identifier)
	}
	if err != nil {
		s.log.Info().Str("identifier", identifier).Err(err).Msg("sign-in lookup failed")
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Info().Str("identifier", identifier).Msg("sign-in password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	// Gates apply only after a successful credential match; their reasons
	// are safe to disclose.
	switch {
	case !user.Enabled:
		return nil, domain.ErrNotVerified
	case user.Disabled:
		return nil, domain.ErrDisabled
	case user.Deleted:
		return nil, domain.ErrDeleted
	}

	token, err := s.codec.Issue(user.ID, user.Username, user.Roles, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &ports.AuthResult{Token: token, User: user}, nil
}

// Register creates a disabled account with exactly the default customer
// role, issues a confirmation token, and publishes the registration event.
// Self-registration never honors roles from the input.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	if err := s.validateSignup(ctx, in); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		ProfileImage: in.ProfileImage,
		Address:      in.Address,
		Location:     in.Location,
		Roles:        []string{domain.RoleCustomer},
		Enabled:      false,
		Disabled:     false,
		Deleted:      false,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		// Concurrent registration of the same identifier: the store's
		// unique constraint is the final arbiter; report it the same way
		// as a pre-checked collision.
		if errors.Is(err, domain.ErrUserExists) {
			return "", domain.NewValidationError("username or email", "is already taken")
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.IssueConfirmation(ctx, created)
	if err != nil {
		return "", fmt.Errorf("issue confirmation token: %w", err)
	}

	s.events.Publish(domain.TopicUserRegistration, domain.UserRegistrationEvent{
		UserID:          created.ID,
		Username:        created.Username,
		Email:           created.Email,
		FirstName:       created.FirstName,
		LastName:        created.LastName,
		EventType:       domain.EventUserRegistered,
		PhoneNumber:     created.PhoneNumber,
		ConfirmationURL: s.confirmURLBase + token.Token,
		Timestamp:       time.Now().UnixMilli(),
	})

	return "User registered successfully! Please check your email to verify your account.", nil
}

func (s *AuthService) validateSignup(ctx context.Context, in ports.RegisterInput) error {
	if in.Username == "" {
		return domain.NewValidationError("username", "is required")
	}
	if in.Email == "" {
		return domain.NewValidationError("email", "is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.NewValidationError("email", "is not a valid address")
	}
	if len(in.Password) < minPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	if taken, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
		return fmt.Errorf("check username: %w", err)
	} else if taken {
		return domain.NewValidationError("username", "is already taken")
	}

	if taken, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
		return fmt.Errorf("check email: %w", err)
	} else if taken {
		return domain.NewValidationError("email", "is already in use")
	}

	if in.PhoneNumber != "" {
		if taken, err := s.users.ExistsByPhoneNumber(ctx, in.PhoneNumber); err != nil {
			return fmt.Errorf("check phone number: %w", err)
		} else if taken {
			return domain.NewValidationError("phone_number", "is already registered")
		}
	}

	return nil
}

// Confirm marks the account bound to the token as email-verified.
func (s *AuthService) Confirm(ctx context.Context, token string) error {
	return s.tokens.Confirm(ctx, token)
}

// ForgotPassword starts a reset when the email matches an account. It
// returns nil either way; the caller-facing message never reveals whether
// the address exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("forgot-password lookup failed")
		}
		return nil
	}

	if _, err := s.tokens.IssuePasswordReset(ctx, user); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue reset token")
	}
	return nil
}

// ValidateResetToken checks a reset token without consuming it.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.tokens.ValidateReset(ctx, token)
	return err
}

// ResetPassword consumes a reset token and stores the new credential.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return s.tokens.ConsumeReset(ctx, token, newPassword)
}
