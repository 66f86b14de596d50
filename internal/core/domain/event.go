package domain

// Outbound notification topics. Delivery is best-effort and asynchronous;
// event loss never rolls back the mutation that produced the event.
const (
	TopicUserRegistration      = "user-registration"
	TopicAdminUserRegistration = "admin-user-registration"
	TopicPasswordReset         = "user-password-reset"
	TopicProfileUpdate         = "user-profile-update"
)

// Event type tags carried in each payload.
const (
	EventUserRegistered       = "USER_REGISTERED"
	EventAdminUserRegistered  = "ADMIN_USER_REGISTERED"
	EventGoogleUserRegistered = "GOOGLE_USER_REGISTERED"
	EventPasswordReset        = "PASSWORD_RESET_REQUESTED"
	EventProfileUpdated       = "PROFILE_UPDATED_BY_ADMIN"
)

// UserRegistrationEvent announces a new self-registered or federated account.
type UserRegistrationEvent struct {
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	EventType       string `json:"event_type"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}

// AdminUserRegistrationEvent announces an admin-created account. Password is
// the plaintext chosen by the admin, carried for out-of-band delivery to the
// new user by the notification consumer.
type AdminUserRegistrationEvent struct {
	UserID          string   `json:"user_id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Password        string   `json:"password"`
	Roles           []string `json:"roles"`
	EventType       string   `json:"event_type"`
	ConfirmationURL string   `json:"confirmation_url,omitempty"`
	Timestamp       int64    `json:"timestamp"`
}

// PasswordResetEvent carries the reset URL for the notification consumer.
type PasswordResetEvent struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	EventType string `json:"event_type"`
	ResetURL  string `json:"reset_url"`
	Timestamp int64  `json:"timestamp"`
}

// ProfileUpdateEvent lists the fields an admin changed on a profile.
type ProfileUpdateEvent struct {
	UserID        string            `json:"user_id"`
	Username      string            `json:"username"`
	Email         string            `json:"email"`
	ChangedFields map[string]string `json:"changed_fields"`
	EventType     string            `json:"event_type"`
	Timestamp     int64             `json:"timestamp"`
}
