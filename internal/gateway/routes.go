package gateway

import "github.com/fooddelivery/delivery-platform/internal/infrastructure/config"

// Logical backend names. Breakers are keyed by backend, not by route, so
// all routes to one backend share breaker state.
const (
	BackendUserService       = "user-service"
	BackendRestaurantService = "restaurant-service"
	BackendOrderService      = "order-service"
	BackendDeliveryService   = "delivery-service"
)

// Route maps a path prefix to a backend and an authentication requirement.
// The table is static; first match wins.
type Route struct {
	Prefix      string
	Backend     string
	RequireAuth bool
}

// Routes returns the platform route table. Auth endpoints are public —
// they are how callers obtain a token in the first place.
func Routes() []Route {
	return []Route{
		{Prefix: "/api/auth", Backend: BackendUserService, RequireAuth: false},
		{Prefix: "/api/users", Backend: BackendUserService, RequireAuth: true},
		{Prefix: "/api/reports", Backend: BackendUserService, RequireAuth: true},
		{Prefix: "/api/restaurants", Backend: BackendRestaurantService, RequireAuth: true},
		{Prefix: "/api/orders", Backend: BackendOrderService, RequireAuth: true},
		{Prefix: "/api/delivery", Backend: BackendDeliveryService, RequireAuth: true},
	}
}

// BackendURLs maps backend names to their configured base URLs.
func BackendURLs(cfg *config.GatewayConfig) map[string]string {
	return map[string]string{
		BackendUserService:       cfg.UserServiceURL,
		BackendRestaurantService: cfg.RestaurantServiceURL,
		BackendOrderService:      cfg.OrderServiceURL,
		BackendDeliveryService:   cfg.DeliveryServiceURL,
	}
}
