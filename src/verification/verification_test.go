package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"testing"
	"time"

	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/utilities"
	"passport-oracle/src/attestation"
	"passport-oracle/src/claims"
	"passport-oracle/src/registry"

	"github.com/mr-tron/base58"
)

var verificationNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type capturingPublisher struct {
	mu        sync.Mutex
	published []utilities.Serializable
}

func (p *capturingPublisher) Publish(content utilities.Serializable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, content)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func newTestService(t *testing.T) (*Service, *capturingPublisher) {
	t.Helper()

	credential, err := attestation.GenerateOracleCredential(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	clock := func() time.Time { return verificationNow }
	oracle := attestation.NewService(credential, attestation.WithClock(clock))

	contract := registry.NewContract("test-owner", registry.WithClock(clock))
	if err := contract.SetOracleKey("test-owner", credential.Public()); err != nil {
		t.Fatal(err)
	}

	publisher := &capturingPublisher{}
	return NewService(oracle, contract, publisher, logger.New(), WithClock(clock)), publisher
}

func specimenVerifyRequest() VerifyRequest {
	return VerifyRequest{
		PassportNumber:   "L898902C36",
		BirthDate:        "7408122",
		ExpiryDate:       "3204153",
		Nationality:      "UTO",
		Mode:             "physical",
		DocumentSecurity: true,
	}
}

func TestVerifyRegistersValidClaim(t *testing.T) {
	service, publisher := newTestService(t)

	resp, err := service.Verify(context.Background(), specimenVerifyRequest())
	if err != nil {
		t.Fatal(err)
	}

	if !resp.IsValid || !resp.Registered {
		t.Fatalf("expected a valid registered claim, got %+v", resp)
	}
	if resp.Signature == "" || resp.PassportHash == "" {
		t.Error("response must carry the signed attestation")
	}
	if got := service.RegistryStatus().Count; got != 1 {
		t.Errorf("registry count = %d, expected 1", got)
	}
	if publisher.count() != 1 {
		t.Errorf("expected 1 forwarded registration, got %d", publisher.count())
	}

	if _, err := base58.Decode(resp.Signature); err != nil {
		t.Errorf("signature is not valid base58: %v", err)
	}
}

func TestVerifyInvalidClaimNotRegistered(t *testing.T) {
	service, publisher := newTestService(t)

	req := specimenVerifyRequest()
	req.DocumentSecurity = false
	resp, err := service.Verify(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if resp.IsValid || resp.Registered {
		t.Errorf("claim without document security must not register: %+v", resp)
	}
	if resp.Signature == "" {
		t.Error("failed verification still returns a signed attestation")
	}
	if got := service.RegistryStatus().Count; got != 0 {
		t.Errorf("registry count = %d, expected 0", got)
	}
	if publisher.count() != 0 {
		t.Error("invalid claims must not be forwarded to the chain worker")
	}
}

func TestVerifyMalformedRequest(t *testing.T) {
	service, _ := newTestService(t)

	req := specimenVerifyRequest()
	req.Mode = "telepathy"
	if _, err := service.Verify(context.Background(), req); !errors.Is(err, claims.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	req = specimenVerifyRequest()
	req.PassportNumber = "nope"
	if _, err := service.Verify(context.Background(), req); !errors.Is(err, claims.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestVerifyBatchSignsAllOutcomes(t *testing.T) {
	service, _ := newTestService(t)

	valid := specimenVerifyRequest()
	invalid := specimenVerifyRequest()
	invalid.DocumentSecurity = false

	resp, err := service.VerifyBatch(context.Background(), []VerifyRequest{valid, invalid})
	if err != nil {
		t.Fatal(err)
	}

	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	if resp.BatchSignature == "" {
		t.Error("batch response must carry a batch signature")
	}
	if !resp.Items[0].IsValid || resp.Items[1].IsValid {
		t.Errorf("unexpected validity spread: %+v", resp.Items)
	}
}

func TestRegisterWithProof(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}

	service, publisher := newTestService(t)

	claim := claims.PassportClaim{
		Number:      "L898902C36",
		BirthDate:   "7408122",
		ExpiryDate:  "3204153",
		Nationality: "UTO",
		Mode:        claims.ModeEpassport,
	}

	resp, err := service.RegisterWithProof(claim, true)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Registered || !resp.IsValid {
		t.Errorf("proof registration should succeed: %+v", resp)
	}
	if got := service.RegistryStatus().Count; got != 1 {
		t.Errorf("registry count = %d, expected 1", got)
	}
	if publisher.count() != 0 {
		t.Error("proof registrations are local, not forwarded to the chain worker")
	}

	if _, err := service.RegisterWithProof(claim, false); !errors.Is(err, registry.ErrNotValid) {
		t.Errorf("expected ErrNotValid without a chip signature, got %v", err)
	}
}

func TestRegistryStatusReflectsRoot(t *testing.T) {
	service, _ := newTestService(t)

	before := service.RegistryStatus()
	if _, err := service.Verify(context.Background(), specimenVerifyRequest()); err != nil {
		t.Fatal(err)
	}
	after := service.RegistryStatus()

	if before.Root == after.Root {
		t.Error("registering a claim must move the registry root")
	}
	if after.Count != before.Count+1 {
		t.Errorf("count did not advance: %d -> %d", before.Count, after.Count)
	}
}

func TestCheckInclusionRejectsGarbage(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.CheckInclusion(InclusionRequest{Root: "0OIl", Leaf: "abc"}); err == nil {
		t.Error("expected decode error for invalid base58 root")
	}
}
