package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*options)

type options struct {
	capacity int
	name     string
}

// WithCapacity sets the maximum number of buffered items.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithDepthGauge reports the queue depth on the mailbox gauge. Only the screen
// mailbox sets it.
func WithDepthGauge() Option {
	return func(o *options) { o.name = "mailbox" }
}
