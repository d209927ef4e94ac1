package crawler

const (
	QuitSignal EventType = iota
	ObservationDone
)

type EventType int

func (et EventType) String() string {
	switch et {
	case QuitSignal:
		return "QuitSignal"
	case ObservationDone:
		return "ObservationDone"
	default:
		return "Unknown"
	}
}

// Event are emitted through a channel during observation.
type Event interface {
	Type() EventType
}

// QuitEvent is the last event sent on the channel once the crawler is stopped.
type QuitEvent struct{}

func (q QuitEvent) Type() EventType {
	return QuitSignal
}

// ObservationEvent carries the result of an observation.
type ObservationEvent struct {
	Key     string
	Payload interface{}
}

func (o ObservationEvent) Type() EventType {
	return ObservationDone
}
