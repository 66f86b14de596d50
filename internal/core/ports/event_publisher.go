package ports

// EventPublisher dispatches notification events to named topics.
// Publish is fire-and-forget: it returns immediately, delivery failures are
// logged by the implementation and never propagate to the caller.
type EventPublisher interface {
	Publish(topic string, event any)
}
