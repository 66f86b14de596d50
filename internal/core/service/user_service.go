package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

// UserService owns profile reads and writes plus admin account management.
type UserService struct {
	users          ports.UserRepository
	tokens         ports.LifecycleTokenService
	events         ports.EventPublisher
	confirmURLBase string
	log            zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	tokens ports.LifecycleTokenService,
	events ports.EventPublisher,
	confirmURLBase string,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:          users,
		tokens:         tokens,
		events:         events,
		confirmURLBase: confirmURLBase,
		log:            log,
	}
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) ListAll(ctx context.Context) ([]*domain.User, error) {
	return s.users.FindAll(ctx)
}

// ListByRole accepts role names with or without the ROLE_ prefix.
func (s *UserService) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	if !strings.HasPrefix(role, "ROLE_") {
		role = "ROLE_" + role
	}
	return s.users.FindByRole(ctx, role)
}

// UpdateProfile applies the fields present in the patch to the caller's own
// account. Unique fields are re-validated only when they actually change.
func (s *UserService) UpdateProfile(ctx context.Context, username string, patch ports.ProfilePatch) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if _, err := s.applyProfilePatch(ctx, user, patch); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now().UTC()
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.NewValidationError("username or email", "is already taken")
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

// applyProfilePatch mutates user in place and returns the changed-field map.
func (s *UserService) applyProfilePatch(ctx context.Context, user *domain.User, patch ports.ProfilePatch) (map[string]string, error) {
	changed := make(map[string]string)

	if patch.Username != nil && *patch.Username != user.Username {
		if taken, err := s.users.ExistsByUsername(ctx, *patch.Username); err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		} else if taken {
			return nil, domain.NewValidationError("username", "is already taken")
		}
		user.Username = *patch.Username
		changed["username"] = user.Username
	}

	if patch.Email != nil && *patch.Email != user.Email {
		if taken, err := s.users.ExistsByEmail(ctx, *patch.Email); err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		} else if taken {
			return nil, domain.NewValidationError("email", "is already in use")
		}
		user.Email = *patch.Email
		changed["email"] = user.Email
	}

	if patch.PhoneNumber != nil && *patch.PhoneNumber != user.PhoneNumber {
		if *patch.PhoneNumber != "" {
			if taken, err := s.users.ExistsByPhoneNumber(ctx, *patch.PhoneNumber); err != nil {
				return nil, fmt.Errorf("check phone number: %w", err)
			} else if taken {
				return nil, domain.NewValidationError("phone_number", "is already in use")
			}
		}
		user.PhoneNumber = *patch.PhoneNumber
		changed["phone_number"] = user.PhoneNumber
	}

	if patch.FirstName != nil && *patch.FirstName != user.FirstName {
		user.FirstName = *patch.FirstName
		changed["first_name"] = user.FirstName
	}
	if patch.LastName != nil && *patch.LastName != user.LastName {
		user.LastName = *patch.LastName
		changed["last_name"] = user.LastName
	}
	if patch.ProfileImage != nil && *patch.ProfileImage != user.ProfileImage {
		user.ProfileImage = *patch.ProfileImage
		changed["profile_image"] = user.ProfileImage
	}
	if patch.Address != nil && *patch.Address != user.Address {
		user.Address = *patch.Address
		changed["address"] = user.Address
	}
	if patch.Location != nil {
		user.Location = patch.Location
		changed["location"] = patch.Location.Type
	}

	return changed, nil
}

// ChangePassword verifies the current credential before storing a new one.
func (s *UserService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	return nil
}

// CreateByAdmin builds a pre-verified account with the requested roles
// mapped through the fixed catalog. The account still starts disabled until
// email confirmation, and the registration event carries the plaintext
// password for out-of-band delivery to the new user.
func (s *UserService) CreateByAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := s.validateAdminSignup(ctx, in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:             in.Username,
		Email:                in.Email,
		PasswordHash:         string(hash),
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		PhoneNumber:          in.PhoneNumber,
		ProfileImage:         in.ProfileImage,
		Address:              in.Address,
		Location:             in.Location,
		IdentificationNumber: in.IdentificationNumber,
		VehicleNumber:        in.VehicleNumber,
		Roles:                mapRoles(in.Roles),
		Enabled:              false,
		Verified:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.NewValidationError("username or email", "is already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.IssueConfirmation(ctx, created)
	if err != nil {
		return nil, fmt.Errorf("issue confirmation token: %w", err)
	}

	s.events.Publish(domain.TopicAdminUserRegistration, domain.AdminUserRegistrationEvent{
		UserID:          created.ID,
		Username:        created.Username,
		Email:           created.Email,
		FirstName:       created.FirstName,
		LastName:        created.LastName,
		Password:        in.Password,
		Roles:           created.Roles,
		EventType:       domain.EventAdminUserRegistered,
		ConfirmationURL: s.confirmURLBase + token.Token,
		Timestamp:       time.Now().UnixMilli(),
	})

	return created, nil
}

func (s *UserService) validateAdminSignup(ctx context.Context, in ports.RegisterInput) error {
	if in.Username == "" {
		return domain.NewValidationError("username", "is required")
	}
	if in.Email == "" {
		return domain.NewValidationError("email", "is required")
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
	if in.IdentificationNumber != "" {
		if taken, err := s.users.ExistsByIdentificationNumber(ctx, in.IdentificationNumber); err != nil {
			return fmt.Errorf("check identification number: %w", err)
		} else if taken {
			return domain.NewValidationError("identification_number", "is already registered")
		}
	}
	return nil
}

// UpdateByAdmin applies a partial update to any account. Role changes
// replace the full role set. When any field changed, a profile-update
// notification is published after the write lands.
func (s *UserService) UpdateByAdmin(ctx context.Context, id string, patch ports.AdminPatch) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := s.applyProfilePatch(ctx, user, patch.ProfilePatch)
	if err != nil {
		return nil, err
	}

	if patch.IdentificationNumber != nil && *patch.IdentificationNumber != user.IdentificationNumber {
		if *patch.IdentificationNumber != "" {
			if taken, err := s.users.ExistsByIdentificationNumber(ctx, *patch.IdentificationNumber); err != nil {
				return nil, fmt.Errorf("check identification number: %w", err)
			} else if taken {
				return nil, domain.NewValidationError("identification_number", "is already registered")
			}
		}
		user.IdentificationNumber = *patch.IdentificationNumber
		changed["identification_number"] = user.IdentificationNumber
	}
	if patch.VehicleNumber != nil && *patch.VehicleNumber != user.VehicleNumber {
		user.VehicleNumber = *patch.VehicleNumber
		changed["vehicle_number"] = user.VehicleNumber
	}

	if patch.Roles != nil {
		roles := mapRoles(patch.Roles)
		if !sameRoles(user.Roles, roles) {
			user.Roles = roles
			changed["roles"] = strings.Join(roles, ", ")
		}
	}

	applyGate := func(name string, target *bool, value *bool) {
		if value != nil && *value != *target {
			*target = *value
			changed[name] = fmt.Sprintf("%t", *value)
		}
	}
	applyGate("enabled", &user.Enabled, patch.Enabled)
	applyGate("disabled", &user.Disabled, patch.Disabled)
	applyGate("deleted", &user.Deleted, patch.Deleted)
	applyGate("verified", &user.Verified, patch.Verified)

	user.UpdatedAt = time.Now().UTC()
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.NewValidationError("username or email", "is already taken")
		}
		return nil, fmt.Errorf("admin update: %w", err)
	}

	if len(changed) > 0 {
		s.events.Publish(domain.TopicProfileUpdate, domain.ProfileUpdateEvent{
			UserID:        updated.ID,
			Username:      updated.Username,
			Email:         updated.Email,
			ChangedFields: changed,
			EventType:     domain.EventProfileUpdated,
			Timestamp:     time.Now().UnixMilli(),
		})
	}

	return updated, nil
}

func (s *UserService) ValidateRole(ctx context.Context, id, role string) (bool, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.HasRole(role), nil
}

func (s *UserService) ValidateRoleAndEnabled(ctx context.Context, id, role string) (bool, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Enabled && user.HasRole(role), nil
}

// mapRoles normalizes a requested role list through the fixed catalog,
// deduplicating and defaulting to the customer role when empty.
func mapRoles(requested []string) []string {
	if len(requested) == 0 {
		return []string{domain.RoleCustomer}
	}
	seen := make(map[string]struct{}, len(requested))
	roles := make([]string, 0, len(requested))
	for _, r := range requested {
		name := domain.NormalizeRole(r)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		roles = append(roles, name)
	}
	return roles
}

func sameRoles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, r := range a {
		set[r] = struct{}{}
	}
	for _, r := range b {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
