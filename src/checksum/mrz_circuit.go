package checksum

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
)

const (
	td3NumberLength = 9
	td3DateLength   = 6
)

// MrzCircuit proves that a TD3 passport's three checked fields and the
// line-level composite digit are all consistent, without revealing the
// fields. Each of the four mod-10 reductions carries its own witnessed
// quotient/remainder pair.
type MrzCircuit struct {
	Number     [td3NumberLength]frontend.Variable `gnark:",secret"`
	BirthDate  [td3DateLength]frontend.Variable   `gnark:",secret"`
	ExpiryDate [td3DateLength]frontend.Variable   `gnark:",secret"`

	NumberQ    frontend.Variable `gnark:",secret"`
	NumberR    frontend.Variable `gnark:",secret"`
	BirthQ     frontend.Variable `gnark:",secret"`
	BirthR     frontend.Variable `gnark:",secret"`
	ExpiryQ    frontend.Variable `gnark:",secret"`
	ExpiryR    frontend.Variable `gnark:",secret"`
	CompositeQ frontend.Variable `gnark:",secret"`
	CompositeR frontend.Variable `gnark:",secret"`

	NumberDigit    frontend.Variable `gnark:",public"`
	BirthDigit     frontend.Variable `gnark:",public"`
	ExpiryDigit    frontend.Variable `gnark:",public"`
	CompositeDigit frontend.Variable `gnark:",public"`
}

func (c *MrzCircuit) Define(api frontend.API) error {
	assertCheckDigit(api, c.Number[:], c.NumberQ, c.NumberR, c.NumberDigit)
	assertCheckDigit(api, c.BirthDate[:], c.BirthQ, c.BirthR, c.BirthDigit)
	assertCheckDigit(api, c.ExpiryDate[:], c.ExpiryQ, c.ExpiryR, c.ExpiryDigit)

	// Line-level check: the concatenation of all three fields, each
	// followed by its own check digit, reduced the same way.
	var composite []frontend.Variable
	composite = append(composite, c.Number[:]...)
	composite = append(composite, c.NumberDigit)
	composite = append(composite, c.BirthDate[:]...)
	composite = append(composite, c.BirthDigit)
	composite = append(composite, c.ExpiryDate[:]...)
	composite = append(composite, c.ExpiryDigit)

	assertCheckDigit(api, composite, c.CompositeQ, c.CompositeR, c.CompositeDigit)
	return nil
}

// AssignMrz builds a witness assignment from the raw checked field strings,
// each including its trailing check digit.
func AssignMrz(numberWithCheck, birthWithCheck, expiryWithCheck string) (*MrzCircuit, error) {
	if len(numberWithCheck) != td3NumberLength+1 {
		return nil, fmt.Errorf("passport number must be %d characters plus check digit", td3NumberLength)
	}
	if len(birthWithCheck) != td3DateLength+1 || len(expiryWithCheck) != td3DateLength+1 {
		return nil, fmt.Errorf("dates must be %d characters plus check digit", td3DateLength)
	}

	assignment := &MrzCircuit{}

	numberDigit, err := assignField(assignment.Number[:], numberWithCheck, &assignment.NumberQ, &assignment.NumberR)
	if err != nil {
		return nil, err
	}
	birthDigit, err := assignField(assignment.BirthDate[:], birthWithCheck, &assignment.BirthQ, &assignment.BirthR)
	if err != nil {
		return nil, err
	}
	expiryDigit, err := assignField(assignment.ExpiryDate[:], expiryWithCheck, &assignment.ExpiryQ, &assignment.ExpiryR)
	if err != nil {
		return nil, err
	}

	assignment.NumberDigit = numberDigit
	assignment.BirthDigit = birthDigit
	assignment.ExpiryDigit = expiryDigit

	compositeSum, err := compositeWeightedSum(numberWithCheck, birthWithCheck, expiryWithCheck)
	if err != nil {
		return nil, err
	}
	assignment.CompositeQ = compositeSum / 10
	assignment.CompositeR = compositeSum % 10

	composite, err := CompositeCheck([]byte(numberWithCheck), []byte(birthWithCheck), []byte(expiryWithCheck))
	if err != nil {
		return nil, err
	}
	assignment.CompositeDigit = composite

	return assignment, nil
}

func assignField(dst []frontend.Variable, fieldWithCheck string, quotient, remainder *frontend.Variable) (int, error) {
	seq := fieldWithCheck[:len(fieldWithCheck)-1]
	sum := 0
	for i := 0; i < len(seq); i++ {
		value, err := CharValue(seq[i])
		if err != nil {
			return 0, err
		}
		dst[i] = value
		sum += value * weights[i%3]
	}

	*quotient = sum / 10
	*remainder = sum % 10

	return CharValue(fieldWithCheck[len(fieldWithCheck)-1])
}

func compositeWeightedSum(parts ...string) (int, error) {
	var joined []byte
	for _, part := range parts {
		joined = append(joined, part...)
	}
	return weightedSum(joined)
}
