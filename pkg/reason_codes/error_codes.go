package reasoncodes

type ReasonCode string

const (
	ErrUnmarshal         ReasonCode = "UnmarshalError"
	ErrValidation        ReasonCode = "ValidationError"
	ErrChecksumMismatch  ReasonCode = "ChecksumMismatchError"
	ErrAttestation       ReasonCode = "AttestationError"
	ErrSignatureInvalid  ReasonCode = "SignatureInvalidError"
	ErrStaleAttestation  ReasonCode = "StaleAttestationError"
	ErrHologramRejected  ReasonCode = "HologramRejectedError"
	ErrRegistryRejected  ReasonCode = "RegistryRejectedError"
	ErrTransientDelivery ReasonCode = "TransientDeliveryError"
	ErrPermanentDelivery ReasonCode = "PermanentDeliveryError"
	ErrRetriesExhausted  ReasonCode = "RetriesExhaustedError"
	ErrAlreadySubmitted  ReasonCode = "AlreadySubmittedError"
	ErrSolana            ReasonCode = "SolanaBlockchainError"
)
