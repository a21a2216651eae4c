package attestation

import (
	"fmt"

	"passport-oracle/src/claims"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Attestation is the Oracle's signed verdict about one claim. It is
// immutable once signed; the signature, not the booleans, is what the
// registry trusts.
type Attestation struct {
	PassportHash  claims.PassportHash
	IsValid       bool
	HologramValid bool
	Timestamp     int64
	Signature     []byte
}

// Message builds the canonical signing input: the ordered tuple
// [passportHash, isValid, hologramValid, timestamp], each encoded as one
// field element. The ordering and encoding are the wire contract between
// Oracle and registry; permuting the tuple invalidates existing signatures.
func Message(passportHash claims.PassportHash, isValid, hologramValid bool, timestamp int64) []byte {
	out := make([]byte, 0, 4*fr.Bytes)

	hashBytes := passportHash.Bytes()
	out = append(out, hashBytes[:]...)

	valid := boolElement(isValid)
	validBytes := valid.Bytes()
	out = append(out, validBytes[:]...)

	hologram := boolElement(hologramValid)
	hologramBytes := hologram.Bytes()
	out = append(out, hologramBytes[:]...)

	var ts fr.Element
	ts.SetUint64(uint64(timestamp))
	tsBytes := ts.Bytes()
	out = append(out, tsBytes[:]...)

	return out
}

func (a Attestation) Message() []byte {
	return Message(a.PassportHash, a.IsValid, a.HologramValid, a.Timestamp)
}

// BatchDigest condenses N attestations into a single signable digest:
// hash(hash(all passport hashes), hash(all validity flags), hash(all
// timestamps)). One signature then covers the whole batch atomically.
func BatchDigest(hashes []claims.PassportHash, flags []bool, timestamps []int64) ([]byte, error) {
	if len(hashes) != len(flags) || len(hashes) != len(timestamps) {
		return nil, fmt.Errorf("batch arrays must have equal length: %d hashes, %d flags, %d timestamps",
			len(hashes), len(flags), len(timestamps))
	}

	hashDigest := mimc.NewMiMC()
	for _, h := range hashes {
		b := h.Bytes()
		hashDigest.Write(b[:])
	}

	flagDigest := mimc.NewMiMC()
	for _, f := range flags {
		e := boolElement(f)
		b := e.Bytes()
		flagDigest.Write(b[:])
	}

	tsDigest := mimc.NewMiMC()
	for _, t := range timestamps {
		var e fr.Element
		e.SetUint64(uint64(t))
		b := e.Bytes()
		tsDigest.Write(b[:])
	}

	outer := mimc.NewMiMC()
	outer.Write(hashDigest.Sum(nil))
	outer.Write(flagDigest.Sum(nil))
	outer.Write(tsDigest.Sum(nil))
	return outer.Sum(nil), nil
}

func boolElement(b bool) fr.Element {
	var e fr.Element
	if b {
		e.SetOne()
	}
	return e
}
