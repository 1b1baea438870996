package publisher

// Publisher represents a service for publishing accepted chat messages
type Publisher interface {
	// Publish publishes a message under the given key (the session id)
	Publish(key string, message []byte) error

	// Close closes the publisher connection
	Close() error
}
