package attestation

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/mr-tron/base58"
)

// OracleCredential wraps the Oracle's long-term EdDSA key. It is loaded once
// at startup and injected into the AttestationService; nothing else holds
// the private key. EdDSA over the BN254 twisted Edwards curve with a MiMC
// transcript keeps the signature verifiable inside a circuit later.
type OracleCredential struct {
	priv *eddsa.PrivateKey
}

func GenerateOracleCredential(r io.Reader) (*OracleCredential, error) {
	priv, err := eddsa.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("generate oracle key: %w", err)
	}
	return &OracleCredential{priv: priv}, nil
}

func LoadOracleCredential(raw []byte) (*OracleCredential, error) {
	priv := new(eddsa.PrivateKey)
	if _, err := priv.SetBytes(raw); err != nil {
		return nil, fmt.Errorf("load oracle key: %w", err)
	}
	return &OracleCredential{priv: priv}, nil
}

func (oc *OracleCredential) Bytes() []byte {
	return oc.priv.Bytes()
}

func (oc *OracleCredential) Sign(message []byte) ([]byte, error) {
	return oc.priv.Sign(message, mimc.NewMiMC())
}

func (oc *OracleCredential) Public() eddsa.PublicKey {
	return oc.priv.PublicKey
}

func (oc *OracleCredential) PublicKeyBase58() string {
	return EncodePublicKey(oc.priv.PublicKey)
}

func EncodePublicKey(pub eddsa.PublicKey) string {
	return base58.Encode(pub.Bytes())
}

func DecodePublicKey(s string) (eddsa.PublicKey, error) {
	var pub eddsa.PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pub, err
	}
	if _, err := pub.SetBytes(raw); err != nil {
		return pub, err
	}
	return pub, nil
}

// VerifySignature checks an Oracle signature over a canonical message.
func VerifySignature(pub eddsa.PublicKey, signature, message []byte) bool {
	ok, err := pub.Verify(signature, message, mimc.NewMiMC())
	return err == nil && ok
}
