package checksum

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

const ElipticalCurveID = ecc.BN254

type ProofResult struct {
	Proof         groth16.Proof
	VerifyingKey  groth16.VerifyingKey
	PublicWitness witness.Witness
}

// ProveMrz compiles the TD3 circuit and produces a groth16 proof that the
// given checked fields satisfy all four check-digit constraints. The public
// witness exposes only the four digits.
func ProveMrz(numberWithCheck, birthWithCheck, expiryWithCheck string) (*ProofResult, error) {
	// 1. Compile the circuit (constraint system)
	ccs, err := frontend.Compile(
		ElipticalCurveID.ScalarField(),
		r1cs.NewBuilder,
		&MrzCircuit{},
	)
	if err != nil {
		return nil, err
	}

	// 2. Setup proving/verifying keys
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, err
	}

	// 3. Assign inputs
	assignment, err := AssignMrz(numberWithCheck, birthWithCheck, expiryWithCheck)
	if err != nil {
		return nil, err
	}

	fullWitness, err := frontend.NewWitness(assignment, ElipticalCurveID.ScalarField())
	if err != nil {
		return nil, err
	}

	// 4. Create the proof
	proof, err := groth16.Prove(ccs, pk, fullWitness)
	if err != nil {
		return nil, err
	}

	// 5. Get the public witness
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, err
	}

	return &ProofResult{
		Proof:         proof,
		VerifyingKey:  vk,
		PublicWitness: publicWitness,
	}, nil
}

// VerifyMrzProof checks a previously produced proof.
func VerifyMrzProof(result *ProofResult) error {
	return groth16.Verify(result.Proof, result.VerifyingKey, result.PublicWitness)
}
