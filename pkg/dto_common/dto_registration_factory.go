package dtocommon

import (
	reasoncodes "passport-oracle/pkg/reason_codes"
	"passport-oracle/pkg/utilities"
)

type RegistrationDtoFactory interface {
	CreateErrorDto(error, reasoncodes.ReasonCode) utilities.Serializable
	CreateResultDto(signature, accountId string) utilities.Serializable
}

type registrationDtoFactory struct {
	QueueId      string
	PassportHash string
	RequestBody  []byte
}

func NewRegistrationDtoFactory(queueId, passportHash string, requestBody []byte) RegistrationDtoFactory {
	return registrationDtoFactory{
		QueueId:      queueId,
		PassportHash: passportHash,
		RequestBody:  requestBody,
	}
}

func (rdf registrationDtoFactory) CreateErrorDto(
	err error,
	reasonCode reasoncodes.ReasonCode) utilities.Serializable {
	return RegistrationFailureDto{
		QueueId:      rdf.QueueId,
		PassportHash: rdf.PassportHash,
		RequestBody:  rdf.RequestBody,
		Error:        err.Error(),
		ReasonCode:   reasonCode,
	}
}

func (rdf registrationDtoFactory) CreateResultDto(signature, accountId string) utilities.Serializable {
	return RegistrationResultDto{
		QueueId:      rdf.QueueId,
		PassportHash: rdf.PassportHash,
		Signature:    signature,
		AccountId:    accountId,
	}
}
