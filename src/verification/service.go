package verification

import (
	"context"
	"fmt"
	"time"

	dtocommon "passport-oracle/pkg/dto_common"
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
	"passport-oracle/src/attestation"
	"passport-oracle/src/checksum"
	"passport-oracle/src/claims"
	"passport-oracle/src/registry"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

type VerifyRequest struct {
	PassportNumber    string `json:"passport_number"`
	BirthDate         string `json:"birth_date"`
	ExpiryDate        string `json:"expiry_date"`
	Nationality       string `json:"nationality"`
	Mode              string `json:"mode"`
	Media             []byte `json:"media,omitempty"`
	DocumentSecurity  bool   `json:"document_security"`
	NfcSignatureValid bool   `json:"nfc_signature_valid"`
}

type VerifyResponse struct {
	QueueId           string                     `json:"queue_id"`
	PassportHash      string                     `json:"passport_hash"`
	IsValid           bool                       `json:"is_valid"`
	HologramValid     bool                       `json:"hologram_valid"`
	Timestamp         int64                      `json:"timestamp"`
	Signature         string                     `json:"signature"`
	OraclePublicKey   string                     `json:"oracle_public_key"`
	Breakdown         attestation.CheckBreakdown `json:"breakdown"`
	Registered        bool                       `json:"registered"`
	RegistrationError string                     `json:"registration_error,omitempty"`
}

type BatchVerifyResponse struct {
	Items          []VerifyResponse `json:"items"`
	BatchSignature string           `json:"batch_signature,omitempty"`
}

type StatusResponse struct {
	Count uint64 `json:"count"`
	Root  string `json:"root"`
}

type InclusionRequest struct {
	Root     string   `json:"root"`
	Leaf     string   `json:"leaf"`
	Index    uint64   `json:"index"`
	Siblings []string `json:"siblings"`
}

// Service fronts the Oracle for HTTP callers: it runs verification, gates
// registrations through the local contract replica, and forwards accepted
// ones to the chain worker over the queue.
type Service struct {
	oracle    *attestation.Service
	contract  *registry.Contract
	publisher rabbitmq.IRabbitmqPublisher
	log       *logger.Logger
	now       func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(oracle *attestation.Service, contract *registry.Contract, publisher rabbitmq.IRabbitmqPublisher, log *logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		oracle:    oracle,
		contract:  contract,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Verify(ctx context.Context, req VerifyRequest) (VerifyResponse, error) {
	mode, err := claims.ParseMode(req.Mode)
	if err != nil {
		return VerifyResponse{}, err
	}

	result, err := s.oracle.Verify(ctx, attestation.Request{
		Claim: claims.PassportClaim{
			Number:      req.PassportNumber,
			BirthDate:   req.BirthDate,
			ExpiryDate:  req.ExpiryDate,
			Nationality: req.Nationality,
			Mode:        mode,
		},
		Media:             req.Media,
		DocumentSecurity:  req.DocumentSecurity,
		NfcSignatureValid: req.NfcSignatureValid,
	})
	if err != nil {
		return VerifyResponse{}, err
	}

	att := result.Attestation
	resp := VerifyResponse{
		QueueId:         uuid.NewString(),
		PassportHash:    claims.EncodeHash(att.PassportHash),
		IsValid:         att.IsValid,
		HologramValid:   att.HologramValid,
		Timestamp:       att.Timestamp,
		Signature:       base58.Encode(att.Signature),
		OraclePublicKey: result.OraclePublicKey,
		Breakdown:       result.Breakdown,
	}

	if !att.IsValid {
		return resp, nil
	}

	if err := s.contract.RegisterWithAttestation(att); err != nil {
		resp.RegistrationError = err.Error()
		return resp, nil
	}
	resp.Registered = true

	s.forward(resp)
	return resp, nil
}

// VerifyBatch verifies each claim and adds one batch signature covering
// every attestation in the response, valid or not.
func (s *Service) VerifyBatch(ctx context.Context, reqs []VerifyRequest) (BatchVerifyResponse, error) {
	var (
		out        BatchVerifyResponse
		hashes     []claims.PassportHash
		flags      []bool
		timestamps []int64
	)

	for i, req := range reqs {
		resp, err := s.Verify(ctx, req)
		if err != nil {
			return BatchVerifyResponse{}, fmt.Errorf("claim %d: %w", i, err)
		}
		out.Items = append(out.Items, resp)

		hash, err := claims.DecodeHash(resp.PassportHash)
		if err != nil {
			return BatchVerifyResponse{}, fmt.Errorf("claim %d: %w", i, err)
		}
		hashes = append(hashes, hash)
		flags = append(flags, resp.IsValid)
		timestamps = append(timestamps, resp.Timestamp)
	}

	if len(hashes) > 0 {
		signature, err := s.oracle.SignBatch(hashes, flags, timestamps)
		if err != nil {
			return BatchVerifyResponse{}, fmt.Errorf("sign batch: %w", err)
		}
		out.BatchSignature = base58.Encode(signature)
	}

	return out, nil
}

// RegisterWithProof admits a claim on the e-passport path: the MRZ check
// digit constraints are proven in zero knowledge instead of attested, and
// the chip signature verdict travels alongside.
func (s *Service) RegisterWithProof(claim claims.PassportClaim, nfcSigValid bool) (VerifyResponse, error) {
	if err := claim.Validate(); err != nil {
		return VerifyResponse{}, err
	}

	proof, err := checksum.ProveMrz(claim.Number, claim.BirthDate, claim.ExpiryDate)
	if err != nil {
		return VerifyResponse{}, fmt.Errorf("prove MRZ checksums: %w", err)
	}
	mrzValid := checksum.VerifyMrzProof(proof) == nil

	passportHash, err := claims.Hash(claim)
	if err != nil {
		return VerifyResponse{}, err
	}

	timestamp := s.now().Unix()
	if err := s.contract.RegisterWithProof(passportHash, nfcSigValid, mrzValid, timestamp); err != nil {
		return VerifyResponse{}, err
	}

	return VerifyResponse{
		QueueId:      uuid.NewString(),
		PassportHash: claims.EncodeHash(passportHash),
		IsValid:      true,
		Timestamp:    timestamp,
		Registered:   true,
	}, nil
}

func (s *Service) RegistryStatus() StatusResponse {
	root := s.contract.Root()
	rootDigest := root.Bytes()
	return StatusResponse{
		Count: s.contract.Count(),
		Root:  base58.Encode(rootDigest[:]),
	}
}

func (s *Service) CheckInclusion(req InclusionRequest) (bool, error) {
	root, err := decodeElement(req.Root)
	if err != nil {
		return false, fmt.Errorf("root: %w", err)
	}
	leaf, err := decodeElement(req.Leaf)
	if err != nil {
		return false, fmt.Errorf("leaf: %w", err)
	}

	siblings := make([]fr.Element, len(req.Siblings))
	for i, s := range req.Siblings {
		siblings[i], err = decodeElement(s)
		if err != nil {
			return false, fmt.Errorf("sibling %d: %w", i, err)
		}
	}

	return registry.VerifyInclusion(root, leaf, req.Index, siblings), nil
}

func (s *Service) forward(resp VerifyResponse) {
	if s.publisher == nil {
		return
	}

	request := dtocommon.RegistrationRequestDto{
		QueueId:       resp.QueueId,
		PassportHash:  resp.PassportHash,
		IsValid:       resp.IsValid,
		HologramValid: resp.HologramValid,
		Timestamp:     resp.Timestamp,
		Signature:     resp.Signature,
		Mode:          "attested",
	}
	if err := s.publisher.Publish(request); err != nil {
		s.log.Errorf(err, "failed to forward registration %s", resp.QueueId)
	}
}

func decodeElement(s string) (fr.Element, error) {
	var out fr.Element
	raw, err := base58.Decode(s)
	if err != nil {
		return out, err
	}
	out.SetBytes(raw)
	return out, nil
}
