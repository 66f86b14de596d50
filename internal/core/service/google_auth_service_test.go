package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

func newGoogleFixture() (*GoogleAuthService, *stubUserRepo, *capturePublisher) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	pub := &capturePublisher{}
	lifecycle := NewLifecycleTokenService(tokens, users, pub, "https://app.example.com/reset?token=", zerolog.Nop())
	svc := NewGoogleAuthService(users, lifecycle, NewSessionCodec("test-secret", 0), pub, "https://app.example.com/confirm?token=", zerolog.Nop())
	return svc, users, pub
}

func TestGoogleAuthService_Process_NewAccount(t *testing.T) {
	svc, users, pub := newGoogleFixture()
	ctx := context.Background()

	res, err := svc.Process(ctx, ports.GoogleAuthInput{
		Email:    "Maria.Lopez@Example.com",
		Name:     "Maria Lopez",
		PhotoURL: "https://lh3.example.com/photo.jpg",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected session token, got empty")
	}

	user := res.User
	if user.Email != "maria.lopez@example.com" {
		t.Fatalf("email must be normalized, got %q", user.Email)
	}
	if !user.Enabled {
		t.Fatalf("federated accounts must be enabled immediately")
	}
	if len(user.Roles) != 1 || user.Roles[0] != domain.RoleCustomer {
		t.Fatalf("unexpected roles: %v", user.Roles)
	}
	if user.FirstName != "Maria" || user.LastName != "Lopez" {
		t.Fatalf("unexpected name split: %q %q", user.FirstName, user.LastName)
	}
	if user.ProfileImage != "https://lh3.example.com/photo.jpg" {
		t.Fatalf("unexpected avatar: %q", user.ProfileImage)
	}
	if ok, _ := regexp.MatchString(`^marialopez\d{4}$`, user.Username); !ok {
		t.Fatalf("unexpected synthesized username: %q", user.Username)
	}
	if _, err := users.FindByID(ctx, user.ID); err != nil {
		t.Fatalf("created account not stored: %v", err)
	}

	events := pub.byTopic(domain.TopicUserRegistration)
	if len(events) != 1 {
		t.Fatalf("expected 1 registration event, got %d", len(events))
	}
	evt := events[0].event.(domain.UserRegistrationEvent)
	if evt.EventType != domain.EventGoogleUserRegistered {
		t.Fatalf("unexpected event type: %s", evt.EventType)
	}
}

func TestGoogleAuthService_Process_ReconcilesExisting(t *testing.T) {
	svc, users, pub := newGoogleFixture()
	ctx := context.Background()

	existing, _ := users.Create(ctx, &domain.User{
		Username:     "nina",
		Email:        "nina@example.com",
		ProfileImage: "https://old.example.com/a.jpg",
		Roles:        []string{domain.RoleCustomer},
		Enabled:      false,
	})

	res, err := svc.Process(ctx, ports.GoogleAuthInput{
		Email:    "nina@example.com",
		Name:     "Nina K",
		PhotoURL: "https://lh3.example.com/new.jpg",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.User.ID != existing.ID {
		t.Fatalf("must sign in the existing account, got %+v", res.User)
	}

	stored, _ := users.FindByID(ctx, existing.ID)
	if !stored.Enabled {
		t.Fatalf("federated sign-in must enable an unconfirmed account")
	}
	if stored.ProfileImage != "https://lh3.example.com/new.jpg" {
		t.Fatalf("avatar must be refreshed, got %q", stored.ProfileImage)
	}
	if stored.Username != "nina" {
		t.Fatalf("username must not change on reconciliation, got %q", stored.Username)
	}

	// No new account, no registration event.
	if got := len(pub.byTopic(domain.TopicUserRegistration)); got != 0 {
		t.Fatalf("reconciliation must not publish registration events, got %d", got)
	}
}

func TestGoogleAuthService_Process_NoChangeNoWrite(t *testing.T) {
	svc, users, _ := newGoogleFixture()
	ctx := context.Background()

	existing, _ := users.Create(ctx, &domain.User{
		Username:     "oscar",
		Email:        "oscar@example.com",
		ProfileImage: "https://lh3.example.com/same.jpg",
		Roles:        []string{domain.RoleCustomer},
		Enabled:      true,
	})

	res, err := svc.Process(ctx, ports.GoogleAuthInput{
		Email:    "oscar@example.com",
		Name:     "Oscar",
		PhotoURL: "https://lh3.example.com/same.jpg",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.User.ID != existing.ID || res.Token == "" {
		t.Fatalf("expected fresh session for existing account")
	}
}

func TestGoogleAuthService_Process_RequiresEmail(t *testing.T) {
	svc, _, _ := newGoogleFixture()

	if _, err := svc.Process(context.Background(), ports.GoogleAuthInput{Name: "No Email"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGoogleAuthService_GenerateUsername_Collision(t *testing.T) {
	svc, users, _ := newGoogleFixture()
	ctx := context.Background()

	// Occupy every 4-digit suffix candidate so the timestamp fallback kicks in.
	for i := 0; i < 10000; i++ {
		id := fmtUsername("pat", i)
		users.users[id] = &domain.User{ID: id, Username: id, Email: id + "@example.com"}
	}

	username, err := svc.generateUsername(ctx, "Pat")
	if err != nil {
		t.Fatalf("generateUsername failed: %v", err)
	}
	if ok, _ := regexp.MatchString(`^pat\d{1,4}$`, username); !ok {
		t.Fatalf("unexpected fallback username: %q", username)
	}
}

func fmtUsername(base string, n int) string {
	return base + string([]byte{'0' + byte(n/1000%10), '0' + byte(n/100%10), '0' + byte(n/10%10), '0' + byte(n%10)})
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in    string
		first string
		last  string
	}{
		{"Maria Lopez", "Maria", "Lopez"},
		{"Prince", "Prince", ""},
		{"Ana de la Cruz", "Ana", "de la Cruz"},
		{"  Lee  ", "Lee", ""},
	}
	for _, tc := range cases {
		first, last := splitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("splitName(%q) = %q, %q; want %q, %q", tc.in, first, last, tc.first, tc.last)
		}
	}
}
