package claims

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/mr-tron/base58"
)

// PassportHash is the single field-sized commitment identifying a claim in
// the registry. The registry never sees the raw passport data behind it.
type PassportHash = fr.Element

// Hash canonicalizes a claim into its passport hash: each of the four claim
// fields is hashed on its own (one field element per character), then the
// four field-level hashes are hashed into a single commitment. The two
// levels keep the per-field circuit cost bounded and give stable per-field
// commitments for later selective disclosure.
//
// Field order is load-bearing: [number, birthDate, expiryDate, nationality].
func Hash(c PassportClaim) (PassportHash, error) {
	var out PassportHash

	if err := c.Validate(); err != nil {
		return out, err
	}

	fields := [4]string{c.Number, c.BirthDate, c.ExpiryDate, c.Nationality}

	outer := mimc.NewMiMC()
	for _, field := range fields {
		fieldHash := hashField(field)
		digest := fieldHash.Bytes()
		outer.Write(digest[:])
	}

	out.SetBytes(outer.Sum(nil))
	return out, nil
}

func hashField(field string) fr.Element {
	h := mimc.NewMiMC()
	for i := 0; i < len(field); i++ {
		var ch fr.Element
		ch.SetUint64(uint64(field[i]))
		chBytes := ch.Bytes()
		h.Write(chBytes[:])
	}

	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// EncodeHash renders a passport hash for API responses and queue payloads.
func EncodeHash(h PassportHash) string {
	digest := h.Bytes()
	return base58.Encode(digest[:])
}

// DecodeHash parses a base58 passport hash produced by EncodeHash.
func DecodeHash(s string) (PassportHash, error) {
	var out PassportHash
	raw, err := base58.Decode(s)
	if err != nil {
		return out, err
	}
	out.SetBytes(raw)
	return out, nil
}
