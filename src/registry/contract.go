package registry

import (
	"errors"
	"sync"
	"time"

	"passport-oracle/src/attestation"
	"passport-oracle/src/claims"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

var (
	ErrUnauthorized     = errors.New("caller is not the registry owner")
	ErrOracleKeyUnset   = errors.New("oracle key not configured")
	ErrSignatureInvalid = errors.New("attestation signature does not verify")
	ErrNotValid         = errors.New("attestation marks the passport invalid")
	ErrHologramRejected = errors.New("attestation marks the hologram invalid")
	ErrStaleAttestation = errors.New("attestation timestamp outside freshness window")
	ErrLengthMismatch   = errors.New("batch arrays must have equal length")
)

// RegistrationType tags how an identity earned its registry entry.
type RegistrationType uint8

const (
	TypeAttested RegistrationType = 1
	TypeProved   RegistrationType = 2
)

// Record is one append-only registry entry.
type Record struct {
	PassportHash claims.PassportHash
	Timestamp    int64
	Type         RegistrationType
}

// FreshnessWindow bounds how old (or how far in the future) an
// attestation's timestamp may be at registration time.
const FreshnessWindow = time.Hour

// Contract models the on-chain identity registry: an owner-administered,
// append-only log folded into a single running root. All state transitions
// go through registerIdentity, which updates the root and count together
// under the mutex the way the chain serializes transactions.
type Contract struct {
	mu        sync.Mutex
	owner     string
	oracleKey *eddsa.PublicKey
	records   []Record
	root      fr.Element
	count     uint64
	freshness time.Duration
	now       func() time.Time
}

type ContractOption func(*Contract)

func WithFreshnessWindow(d time.Duration) ContractOption {
	return func(c *Contract) { c.freshness = d }
}

func WithClock(now func() time.Time) ContractOption {
	return func(c *Contract) { c.now = now }
}

// NewContract deploys a registry with the given owner capability. The root
// starts at zero and only ever moves forward.
func NewContract(owner string, opts ...ContractOption) *Contract {
	c := &Contract{
		owner:     owner,
		freshness: FreshnessWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOracleKey rotates the trusted Oracle key. Owner only; existing
// records stay valid because the registry trusts signatures at
// registration time, not retroactively.
func (c *Contract) SetOracleKey(caller string, key eddsa.PublicKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.owner {
		return ErrUnauthorized
	}
	c.oracleKey = &key
	return nil
}

// RegisterWithAttestation admits one identity on the strength of an Oracle
// signature. All gates are checked before any state changes.
func (c *Contract) RegisterWithAttestation(att attestation.Attestation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAttestation(att); err != nil {
		return err
	}

	c.registerIdentity(att.PassportHash, att.Timestamp, TypeAttested)
	return nil
}

// RegisterWithProof admits an identity on the e-passport path: the caller
// has already verified the chip signature and the MRZ checksum proof, and
// the contract gates on both verdicts plus freshness of the verification
// timestamp.
func (c *Contract) RegisterWithProof(passportHash claims.PassportHash, nfcSigValid, mrzValid bool, timestamp int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !nfcSigValid {
		return ErrNotValid
	}
	if !mrzValid {
		return ErrNotValid
	}
	if !c.fresh(timestamp) {
		return ErrStaleAttestation
	}

	c.registerIdentity(passportHash, timestamp, TypeProved)
	return nil
}

// RegisterBatch admits a whole batch atomically: one Oracle signature over
// the batch digest covers every entry, and each entry whose validity flag
// is true is registered in array order. Nothing mutates until every gate
// has passed.
func (c *Contract) RegisterBatch(hashes []claims.PassportHash, flags []bool, timestamps []int64, signature []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(hashes) != len(flags) || len(hashes) != len(timestamps) {
		return ErrLengthMismatch
	}
	if c.oracleKey == nil {
		return ErrOracleKeyUnset
	}

	digest, err := attestation.BatchDigest(hashes, flags, timestamps)
	if err != nil {
		return ErrLengthMismatch
	}
	if !attestation.VerifySignature(*c.oracleKey, signature, digest) {
		return ErrSignatureInvalid
	}

	for i := range hashes {
		if !flags[i] {
			continue
		}
		if !c.fresh(timestamps[i]) {
			return ErrStaleAttestation
		}
	}

	// Entries whose flag is false stay out of the registry but remain part
	// of the signed batch digest.
	for i := range hashes {
		if !flags[i] {
			continue
		}
		c.registerIdentity(hashes[i], timestamps[i], TypeAttested)
	}
	return nil
}

func (c *Contract) checkAttestation(att attestation.Attestation) error {
	if c.oracleKey == nil {
		return ErrOracleKeyUnset
	}
	if !attestation.VerifySignature(*c.oracleKey, att.Signature, att.Message()) {
		return ErrSignatureInvalid
	}
	if !att.IsValid {
		return ErrNotValid
	}
	if !att.HologramValid {
		return ErrHologramRejected
	}
	if !c.fresh(att.Timestamp) {
		return ErrStaleAttestation
	}
	return nil
}

func (c *Contract) fresh(timestamp int64) bool {
	delta := c.now().Unix() - timestamp
	if delta < 0 {
		delta = -delta
	}
	return time.Duration(delta)*time.Second <= c.freshness
}

// registerIdentity appends the entry and folds it into the root:
// leaf = hash(passportHash, timestamp, type), then
// newRoot = hash(oldRoot, leaf, oldCount). Folding the count in makes each
// root unique to its position in the log, so replaying an old leaf cannot
// reproduce an old root. Callers hold the mutex.
func (c *Contract) registerIdentity(passportHash claims.PassportHash, timestamp int64, regType RegistrationType) {
	leaf := hashTriple(passportHash, uint64ToElement(uint64(timestamp)), uint64ToElement(uint64(regType)))
	c.root = hashTriple(c.root, leaf, uint64ToElement(c.count))
	c.records = append(c.records, Record{
		PassportHash: passportHash,
		Timestamp:    timestamp,
		Type:         regType,
	})
	c.count++
}

func (c *Contract) Root() fr.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}

func (c *Contract) Count() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// IsRegistered reports whether the passport hash appears anywhere in the
// log.
func (c *Contract) IsRegistered(passportHash claims.PassportHash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.records {
		if r.PassportHash.Equal(&passportHash) {
			return true
		}
	}
	return false
}

// Records returns a copy of the append-only log.
func (c *Contract) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

func hashTriple(a, b, d fr.Element) fr.Element {
	h := mimc.NewMiMC()
	ab := a.Bytes()
	h.Write(ab[:])
	bb := b.Bytes()
	h.Write(bb[:])
	db := d.Bytes()
	h.Write(db[:])

	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

func uint64ToElement(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}
