package checksum

import (
	"testing"

	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/test"
)

func TestCheckDigitCircuitSpecimen(t *testing.T) {
	assert := test.NewAssert(t)

	circuit, err := NewCheckDigitCircuit(9)
	if err != nil {
		t.Fatal(err)
	}
	assignment, err := circuit.Assign([]byte("L898902C3"), 6)
	if err != nil {
		t.Fatal(err)
	}

	assert.ProverSucceeded(circuit, assignment,
		test.WithCurves(ElipticalCurveID),
		test.WithBackends(backend.GROTH16),
	)
}

func TestCheckDigitCircuitRejectsWrongDigit(t *testing.T) {
	assert := test.NewAssert(t)

	circuit, err := NewCheckDigitCircuit(9)
	if err != nil {
		t.Fatal(err)
	}
	assignment, err := circuit.Assign([]byte("L898902C3"), 7)
	if err != nil {
		t.Fatal(err)
	}

	assert.ProverFailed(circuit, assignment,
		test.WithCurves(ElipticalCurveID),
		test.WithBackends(backend.GROTH16),
	)
}

func TestMrzCircuitSpecimen(t *testing.T) {
	assert := test.NewAssert(t)

	assignment, err := AssignMrz("L898902C36", "7408122", "1204159")
	if err != nil {
		t.Fatal(err)
	}

	assert.ProverSucceeded(&MrzCircuit{}, assignment,
		test.WithCurves(ElipticalCurveID),
		test.WithBackends(backend.GROTH16),
	)
}

func TestMrzCircuitRejectsTamperedDigit(t *testing.T) {
	assert := test.NewAssert(t)

	assignment, err := AssignMrz("L898902C36", "7408122", "1204159")
	if err != nil {
		t.Fatal(err)
	}
	assignment.NumberDigit = 7

	assert.ProverFailed(&MrzCircuit{}, assignment,
		test.WithCurves(ElipticalCurveID),
		test.WithBackends(backend.GROTH16),
	)
}

func TestProveAndVerifyMrz(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}

	result, err := ProveMrz("L898902C36", "7408122", "1204159")
	if err != nil {
		t.Fatalf("ProveMrz failed: %v", err)
	}
	if err := VerifyMrzProof(result); err != nil {
		t.Errorf("proof did not verify: %v", err)
	}
}

func TestProveMrzRejectsInvalidField(t *testing.T) {
	if _, err := ProveMrz("L898902C37", "7408122", "1204159"); err == nil {
		t.Error("expected proving to fail for a wrong passport number check digit")
	}
}
