package checksum

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
)

// CheckDigitCircuit proves knowledge of an MRZ sequence matching a public
// check digit. Characters enter the circuit pre-mapped to their values
// (0..35); the mod-10 reduction is not computed natively but witnessed:
// the prover supplies Quotient and Remainder and the circuit checks the
// reconstruction equation and the range bounds.
type CheckDigitCircuit struct {
	Values    []frontend.Variable `gnark:",secret"`
	Quotient  frontend.Variable   `gnark:",secret"`
	Remainder frontend.Variable   `gnark:",secret"`
	Digit     frontend.Variable   `gnark:",public"`
}

func NewCheckDigitCircuit(length int) (*CheckDigitCircuit, error) {
	if length == 0 {
		return nil, fmt.Errorf("check digit circuit requires at least one character")
	}
	return &CheckDigitCircuit{
		Values: make([]frontend.Variable, length),
	}, nil
}

func (c *CheckDigitCircuit) Clone() *CheckDigitCircuit {
	return &CheckDigitCircuit{
		Values: make([]frontend.Variable, len(c.Values)),
	}
}

func (c *CheckDigitCircuit) Define(api frontend.API) error {
	assertCheckDigit(api, c.Values, c.Quotient, c.Remainder, c.Digit)
	return nil
}

// Assign fills a witness assignment from a raw character sequence and the
// claimed check digit. Quotient and remainder are computed out-of-circuit;
// the constraints re-check them.
func (c *CheckDigitCircuit) Assign(seq []byte, claimedDigit int) (*CheckDigitCircuit, error) {
	if len(seq) != len(c.Values) {
		return nil, fmt.Errorf("sequence length %d does not match circuit size %d", len(seq), len(c.Values))
	}

	assignment := c.Clone()
	sum := 0
	for i, ch := range seq {
		value, err := CharValue(ch)
		if err != nil {
			return nil, err
		}
		assignment.Values[i] = value
		sum += value * weights[i%3]
	}

	assignment.Quotient = sum / 10
	assignment.Remainder = sum % 10
	assignment.Digit = claimedDigit

	return assignment, nil
}

// assertCheckDigit constrains digit to be the weighted-sum-mod-10 of values.
// The witnessed quotient/remainder pattern is what makes the reduction
// provable: q*10 + r == sum, 0 <= r <= 9, and r equals the public digit.
func assertCheckDigit(api frontend.API, values []frontend.Variable, quotient, remainder, digit frontend.Variable) {
	sum := frontend.Variable(0)
	maxSum := 0
	for i, v := range values {
		api.AssertIsLessOrEqual(v, 35)
		sum = api.Add(sum, api.Mul(v, weights[i%3]))
		maxSum += 35 * weights[i%3]
	}

	api.AssertIsEqual(api.Add(api.Mul(quotient, 10), remainder), sum)
	api.AssertIsLessOrEqual(remainder, 9)
	api.AssertIsLessOrEqual(quotient, maxSum/10)
	api.AssertIsEqual(remainder, digit)
}
