package attestation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"passport-oracle/pkg/logger"
	"passport-oracle/src/checksum"
	"passport-oracle/src/claims"
)

// Request carries one claim through verification. Media is the raw document
// scan for hologram analysis; DocumentSecurity and NfcSignatureValid are
// verdicts forwarded from upstream readers that already inspected the
// physical document or the chip.
type Request struct {
	Claim             claims.PassportClaim
	Media             []byte
	DocumentSecurity  bool
	NfcSignatureValid bool
}

// CheckBreakdown records every individual check that fed the verdict. The
// API returns it alongside the attestation so callers can see why a
// passport failed without re-running anything.
type CheckBreakdown struct {
	Checksum           bool    `json:"checksum"`
	Expiry             bool    `json:"expiry"`
	DocumentSecurity   bool    `json:"document_security"`
	BlacklistClear     bool    `json:"blacklist_clear"`
	Hologram           bool    `json:"hologram"`
	HologramConfidence float64 `json:"hologram_confidence"`
	NfcSignature       bool    `json:"nfc_signature"`
}

type Result struct {
	Attestation     Attestation
	Breakdown       CheckBreakdown
	OraclePublicKey string
}

// Service is the Oracle: it runs every check a claim's verification mode
// calls for and signs the outcome. Failed checks still produce a signed
// attestation with IsValid false; only a malformed claim aborts without
// one.
type Service struct {
	credential *OracleCredential
	hologram   HologramChecker
	blacklist  BlacklistChecker
	log        *logger.Logger
	now        func() time.Time
}

type ServiceOption func(*Service)

func WithHologramChecker(c HologramChecker) ServiceOption {
	return func(s *Service) { s.hologram = c }
}

func WithBlacklistChecker(b BlacklistChecker) ServiceOption {
	return func(s *Service) { s.blacklist = b }
}

func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(credential *OracleCredential, opts ...ServiceOption) *Service {
	s := &Service{
		credential: credential,
		blacklist:  NewStaticBlacklist(),
		log:        logger.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs the full check suite for the claim's mode and returns a
// signed attestation. A collaborator that errors counts as a failed check,
// not a failed verification: the attestation is still signed, with IsValid
// reflecting the failure.
func (s *Service) Verify(ctx context.Context, req Request) (Result, error) {
	if err := req.Claim.Validate(); err != nil {
		return Result{}, err
	}

	breakdown := s.runChecks(ctx, req)
	isValid := verdict(req.Claim.Mode, breakdown)

	passportHash, err := claims.Hash(req.Claim)
	if err != nil {
		return Result{}, err
	}

	att := Attestation{
		PassportHash:  passportHash,
		IsValid:       isValid,
		HologramValid: breakdown.Hologram,
		Timestamp:     s.now().Unix(),
	}

	att.Signature, err = s.credential.Sign(att.Message())
	if err != nil {
		return Result{}, fmt.Errorf("sign attestation: %w", err)
	}

	s.log.Infof("attested claim %s: valid=%t mode=%s",
		claims.EncodeHash(passportHash), isValid, req.Claim.Mode)

	return Result{
		Attestation:     att,
		Breakdown:       breakdown,
		OraclePublicKey: s.credential.PublicKeyBase58(),
	}, nil
}

// SignBatch signs the digest condensing the given attestations. Arrays are
// positional; callers keep them aligned.
func (s *Service) SignBatch(hashes []claims.PassportHash, flags []bool, timestamps []int64) ([]byte, error) {
	digest, err := BatchDigest(hashes, flags, timestamps)
	if err != nil {
		return nil, err
	}
	return s.credential.Sign(digest)
}

func (s *Service) runChecks(ctx context.Context, req Request) CheckBreakdown {
	claim := req.Claim

	breakdown := CheckBreakdown{
		Checksum: checksum.Verify([]byte(claim.Number)) &&
			checksum.Verify([]byte(claim.BirthDate)) &&
			checksum.Verify([]byte(claim.ExpiryDate)),
		Expiry:           s.expiryValid(claim.ExpiryDate),
		DocumentSecurity: req.DocumentSecurity,
		NfcSignature:     req.NfcSignatureValid,
	}

	breakdown.BlacklistClear = s.blacklistClear(ctx, claim.Number)
	breakdown.Hologram, breakdown.HologramConfidence = s.hologramValid(ctx, req.Media)

	return breakdown
}

func verdict(mode claims.VerificationMode, b CheckBreakdown) bool {
	switch mode {
	case claims.ModeEpassport:
		// The chip's signature subsumes the physical document checks.
		return b.NfcSignature && b.Checksum
	default:
		return b.Checksum && b.Expiry && b.DocumentSecurity && b.BlacklistClear && b.Hologram
	}
}

func (s *Service) blacklistClear(ctx context.Context, number string) bool {
	blacklisted, err := s.blacklist.IsBlacklisted(ctx, number)
	if err != nil {
		s.log.Error(err, "blacklist lookup failed, treating as not clear")
		return false
	}
	return !blacklisted
}

// hologramValid applies the lenient default: a claim submitted without
// document media passes the hologram check with zero confidence, so
// text-only submissions stay verifiable end to end.
func (s *Service) hologramValid(ctx context.Context, media []byte) (bool, float64) {
	if len(media) == 0 {
		s.log.Warn("no document media supplied, hologram check passes by default")
		return true, 0
	}
	if s.hologram == nil {
		s.log.Warn("no hologram checker configured, hologram check passes by default")
		return true, 0
	}

	result, err := s.hologram.Check(ctx, media)
	if err != nil {
		s.log.Error(err, "hologram check failed, treating as rejected")
		return false, 0
	}
	return result.Valid, result.Confidence
}

// expiryValid parses the YYMMDD prefix of the checked expiry field. Two
// digit years always map into 2000-2099; the document counts as valid
// through the end of its expiry day, UTC.
func (s *Service) expiryValid(expiryWithCheck string) bool {
	if len(expiryWithCheck) < 6 {
		return false
	}

	yy, errY := strconv.Atoi(expiryWithCheck[0:2])
	mm, errM := strconv.Atoi(expiryWithCheck[2:4])
	dd, errD := strconv.Atoi(expiryWithCheck[4:6])
	if errY != nil || errM != nil || errD != nil {
		return false
	}
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return false
	}

	endOfDay := time.Date(2000+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	return s.now().UTC().Before(endOfDay)
}
