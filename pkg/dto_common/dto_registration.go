package dtocommon

import (
	reasoncodes "passport-oracle/pkg/reason_codes"
	"passport-oracle/pkg/utilities"
)

// RegistrationResultDto is published after a registration landed on-chain.
type RegistrationResultDto struct {
	QueueId      string `json:"queue_id"`
	PassportHash string `json:"passport_hash"`
	Signature    string `json:"signature"`
	AccountId    string `json:"account_id"`
}

func (rr RegistrationResultDto) Serialize() ([]byte, error) {
	return utilities.Serialize[RegistrationResultDto](rr)
}

// RegistrationFailureDto carries a terminally failed registration together
// with the reason code so operators can triage without replaying the queue.
type RegistrationFailureDto struct {
	QueueId      string                 `json:"queue_id"`
	PassportHash string                 `json:"passport_hash"`
	RequestBody  []byte                 `json:"request_body"`
	Error        string                 `json:"error"`
	ReasonCode   reasoncodes.ReasonCode `json:"reason_code"`
}

func (rf RegistrationFailureDto) Serialize() ([]byte, error) {
	return utilities.Serialize[RegistrationFailureDto](rf)
}
