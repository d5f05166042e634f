package publisher

// Publisher represents a service for publishing resolved products
type Publisher interface {
	// Publish publishes a message to the stream
	Publish(message []byte) error

	// TrimStreams trims the stream to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
