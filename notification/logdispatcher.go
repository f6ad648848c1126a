package notification

import "log"

// LogDispatcher writes every payload to a logger instead of a client
// connection.
type LogDispatcher struct {
	Logger *log.Logger
}

// NewLogDispatcher creates a LogDispatcher writing into logger.
func NewLogDispatcher(logger *log.Logger) *LogDispatcher {
	return &LogDispatcher{Logger: logger}
}

// Dispatch implements Dispatcher.
func (d *LogDispatcher) Dispatch(playerID uint32, payload Payload) error {
	d.Logger.Printf("to %d: %s %+v", playerID, payload.Kind(), payload)
	return nil
}
