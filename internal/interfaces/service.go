package interfaces

// Service is implemented by every outer surface of the daemon. Start must
// not block, Stop releases every resource held by the service.
type Service interface {
	Start() error
	Stop()
}
