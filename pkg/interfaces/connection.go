package interfaces

// Conn is the transport handle a Session holds. Implementations must make
// WriteJSON safe for concurrent use; the registry and broadcaster call it
// from multiple goroutines.
type Conn interface {
	// WriteJSON queues a JSON message for delivery to the client.
	WriteJSON(v interface{}) error

	// Close tears down the transport. It is idempotent.
	Close() error
}
