package external

import (
	"encoding/json"

	dtocommon "passport-oracle/pkg/dto_common"
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
	reasoncodes "passport-oracle/pkg/reason_codes"
	"passport-oracle/src/attestation"
	"passport-oracle/src/claims"
	"passport-oracle/src/model"
	"passport-oracle/src/pipeline"
	"passport-oracle/src/registry"

	"github.com/mr-tron/base58"
	amqp "github.com/rabbitmq/amqp091-go"
)

const RegistrationConsumerAlias rabbitmq.ConsumerAlias = "RegistrationConsumer"

// RegistrationWorker consumes attested registration requests from the
// queue, replays them against the registry contract, and hands accepted
// ones to the delivery pipeline. Requests the contract rejects never reach
// the chain; they go straight to the failure queue.
type RegistrationWorker struct {
	consumer         rabbitmq.IRabbitmqConsumer
	contract         *registry.Contract
	pipe             *pipeline.Pipeline
	failurePublisher rabbitmq.IRabbitmqPublisher
	log              *logger.Logger
}

func NewRegistrationWorker(
	contract *registry.Contract,
	pipe *pipeline.Pipeline,
	failurePublisher rabbitmq.IRabbitmqPublisher,
	log *logger.Logger,
) *RegistrationWorker {
	return &RegistrationWorker{
		consumer:         rabbitmq.GetConsumer(RegistrationConsumerAlias),
		contract:         contract,
		pipe:             pipe,
		failurePublisher: failurePublisher,
		log:              log,
	}
}

func (w *RegistrationWorker) GetServiceName() string {
	return string(RegistrationConsumerAlias)
}

func (w *RegistrationWorker) StartService() {
	w.consumer.StartConsuming(func(d amqp.Delivery) {
		var req dtocommon.RegistrationRequestDto
		if err := json.Unmarshal(d.Body, &req); err != nil {
			factory := dtocommon.NewRegistrationDtoFactory("", "", d.Body)
			_ = w.failurePublisher.Publish(factory.CreateErrorDto(err, reasoncodes.ErrUnmarshal))
			return
		}

		w.handle(req, d.Body)
	})
}

func (w *RegistrationWorker) handle(req dtocommon.RegistrationRequestDto, body []byte) {
	factory := dtocommon.NewRegistrationDtoFactory(req.QueueId, req.PassportHash, body)

	att, err := w.toAttestation(req)
	if err != nil {
		w.log.Errorf(err, "rejecting malformed registration %s", req.QueueId)
		_ = w.failurePublisher.Publish(factory.CreateErrorDto(err, reasoncodes.ErrValidation))
		return
	}

	if err := w.contract.RegisterWithAttestation(att); err != nil {
		w.log.Errorf(err, "registry rejected registration %s", req.QueueId)
		_ = w.failurePublisher.Publish(factory.CreateErrorDto(err, registryReasonCode(err)))
		return
	}

	payload, err := registrationPayload(att)
	if err != nil {
		_ = w.failurePublisher.Publish(factory.CreateErrorDto(err, reasoncodes.ErrValidation))
		return
	}

	queueId, err := w.pipe.Enqueue(req.PassportHash, model.TypeRegistration, payload)
	if err != nil {
		code := reasoncodes.ErrTransientDelivery
		if err == pipeline.ErrAlreadySubmitted {
			code = reasoncodes.ErrAlreadySubmitted
		}
		w.log.Errorf(err, "could not enqueue registration %s", req.QueueId)
		_ = w.failurePublisher.Publish(factory.CreateErrorDto(err, code))
		return
	}

	w.log.Infof("registration %s accepted, queued as %s", req.QueueId, queueId)
}

func (w *RegistrationWorker) toAttestation(req dtocommon.RegistrationRequestDto) (attestation.Attestation, error) {
	passportHash, err := claims.DecodeHash(req.PassportHash)
	if err != nil {
		return attestation.Attestation{}, err
	}
	signature, err := base58.Decode(req.Signature)
	if err != nil {
		return attestation.Attestation{}, err
	}

	return attestation.Attestation{
		PassportHash:  passportHash,
		IsValid:       req.IsValid,
		HologramValid: req.HologramValid,
		Timestamp:     req.Timestamp,
		Signature:     signature,
	}, nil
}

func registrationPayload(att attestation.Attestation) ([]byte, error) {
	payload := RegistrationPayload{
		PassportHash:     att.PassportHash.Bytes(),
		Timestamp:        att.Timestamp,
		RegistrationType: uint8(registry.TypeAttested),
		Signature:        att.Signature,
	}
	return json.Marshal(payload)
}

func registryReasonCode(err error) reasoncodes.ReasonCode {
	switch err {
	case registry.ErrSignatureInvalid, registry.ErrOracleKeyUnset:
		return reasoncodes.ErrSignatureInvalid
	case registry.ErrStaleAttestation:
		return reasoncodes.ErrStaleAttestation
	case registry.ErrHologramRejected:
		return reasoncodes.ErrHologramRejected
	default:
		return reasoncodes.ErrRegistryRejected
	}
}
