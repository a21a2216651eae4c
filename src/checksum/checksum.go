package checksum

import (
	"errors"
	"fmt"
)

// ICAO 9303 check digits weight character values by a cycle of 7, 3, 1.
var weights = [3]int{7, 3, 1}

var ErrInvalidCharacter = errors.New("invalid MRZ character")

// CharValue maps an MRZ character to its numeric value:
// '0'-'9' -> 0-9, 'A'-'Z' -> 10-35, '<' (filler) -> 0.
func CharValue(c byte) (int, error) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), nil
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, nil
	case c == '<':
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCharacter, c)
	}
}

// CheckDigit computes the weighted-sum-mod-10 check digit for a sequence.
func CheckDigit(seq []byte) (int, error) {
	sum, err := weightedSum(seq)
	if err != nil {
		return 0, err
	}
	return sum % 10, nil
}

func weightedSum(seq []byte) (int, error) {
	sum := 0
	for i, c := range seq {
		value, err := CharValue(c)
		if err != nil {
			return 0, err
		}
		sum += value * weights[i%3]
	}
	return sum, nil
}

// Verify checks a sequence whose last character is the claimed check digit.
// An empty sequence fails verification without being an error.
func Verify(seq []byte) bool {
	if len(seq) == 0 {
		return false
	}

	claimed, err := CharValue(seq[len(seq)-1])
	if err != nil {
		return false
	}

	computed, err := CheckDigit(seq[:len(seq)-1])
	if err != nil {
		return false
	}

	return claimed == computed
}

// CompositeCheck computes the check digit over the concatenation of parts,
// check digits of the individual fields included. The TD3 specimen uses this
// for the final line-level check digit; part order is significant.
func CompositeCheck(parts ...[]byte) (int, error) {
	var joined []byte
	for _, part := range parts {
		joined = append(joined, part...)
	}
	return CheckDigit(joined)
}
