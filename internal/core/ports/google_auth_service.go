package ports

import "context"

// GoogleAuthInput is the identity asserted by the federated provider.
type GoogleAuthInput struct {
	Email    string
	Name     string
	PhotoURL string
}

// GoogleAuthService reconciles a federated identity with a local account and
// signs the caller in. Federated sign-in never requires email confirmation;
// the provider has already proven ownership of the address.
type GoogleAuthService interface {
	Process(ctx context.Context, in GoogleAuthInput) (*AuthResult, error)
}
