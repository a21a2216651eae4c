package rabbitmq

// WorkerService is a long-running background service started by the
// application runtime, usually wrapping a consumer or a scheduling loop.
type WorkerService interface {
	GetServiceName() string
	StartService()
}
