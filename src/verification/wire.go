package verification

import (
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
	"passport-oracle/src/attestation"
	"passport-oracle/src/registry"
)

func Build(
	oracle *attestation.Service,
	contract *registry.Contract,
	publisher rabbitmq.IRabbitmqPublisher,
	log *logger.Logger,
) *Handler {
	service := NewService(oracle, contract, publisher, log)
	return NewHandler(service)
}
