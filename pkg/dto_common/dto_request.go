package dtocommon

import (
	"passport-oracle/pkg/utilities"
)

// RegistrationRequestDto travels from the API to the chain worker: one
// attested claim asking to be registered on-chain. Hash and signature are
// base58.
type RegistrationRequestDto struct {
	QueueId       string `json:"queue_id"`
	PassportHash  string `json:"passport_hash"`
	IsValid       bool   `json:"is_valid"`
	HologramValid bool   `json:"hologram_valid"`
	Timestamp     int64  `json:"timestamp"`
	Signature     string `json:"signature"`
	Mode          string `json:"mode"`
}

func (rr RegistrationRequestDto) Serialize() ([]byte, error) {
	return utilities.Serialize[RegistrationRequestDto](rr)
}
