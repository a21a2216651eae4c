package checksum

import (
	"errors"
	"testing"
)

type checkDigitParams struct {
	name     string
	sequence string
	expected int
}

func TestCheckDigitSpecimenValues(t *testing.T) {
	tests := []checkDigitParams{
		{"TD3 specimen passport number", "L898902C3", 6},
		{"TD3 specimen birth date", "740812", 2},
		{"TD3 specimen expiry date", "120415", 9},
		{"single letter", "A", 0},
		{"all fillers", "<<<<<<<", 0},
		{"mixed letters and digits", "A1B2C3", 7},
		{"empty sequence", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digit, err := CheckDigit([]byte(tt.sequence))
			if err != nil {
				t.Fatalf("CheckDigit(%q) returned error: %v", tt.sequence, err)
			}
			if digit != tt.expected {
				t.Errorf("CheckDigit(%q) = %d, expected %d", tt.sequence, digit, tt.expected)
			}
		})
	}
}

func TestCheckDigitInvalidCharacter(t *testing.T) {
	for _, seq := range []string{"l898902c3", "1234-6", "A B"} {
		if _, err := CheckDigit([]byte(seq)); !errors.Is(err, ErrInvalidCharacter) {
			t.Errorf("CheckDigit(%q) expected ErrInvalidCharacter, got %v", seq, err)
		}
	}
}

func TestCheckDigitDeterministic(t *testing.T) {
	first, err := CheckDigit([]byte("L898902C3"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := CheckDigit([]byte("L898902C3"))
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("CheckDigit not deterministic: %d != %d", again, first)
		}
	}
}

func TestWeightedSumInvariant(t *testing.T) {
	// The in-circuit decomposition relies on sum = 10*quotient + digit.
	sequences := []string{"L898902C3", "740812", "120415", "ZZZZZZZZZ"}
	for _, seq := range sequences {
		sum, err := weightedSum([]byte(seq))
		if err != nil {
			t.Fatal(err)
		}
		digit, err := CheckDigit([]byte(seq))
		if err != nil {
			t.Fatal(err)
		}
		if sum/10*10+digit != sum {
			t.Errorf("decomposition broken for %q: sum=%d digit=%d", seq, sum, digit)
		}
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name     string
		sequence string
		expected bool
	}{
		{"valid passport number", "L898902C36", true},
		{"valid birth date", "7408122", true},
		{"valid expiry date", "1204159", true},
		{"wrong digit", "L898902C37", false},
		{"empty sequence", "", false},
		{"lone digit verifies empty payload", "0", true},
		{"invalid character", "l898902C36", false},
		{"letter in digit position", "L898902CA", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify([]byte(tt.sequence)); got != tt.expected {
				t.Errorf("Verify(%q) = %t, expected %t", tt.sequence, got, tt.expected)
			}
		})
	}
}

func TestCompositeCheckOrderSensitive(t *testing.T) {
	a, err := CompositeCheck([]byte("L898902C36"), []byte("7408122"), []byte("1204159"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := CompositeCheck([]byte("7408122"), []byte("L898902C36"), []byte("1204159"))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("composite check digit should depend on part order")
	}
}

func TestCompositeCheckMatchesConcatenation(t *testing.T) {
	composite, err := CompositeCheck([]byte("L898902C36"), []byte("7408122"))
	if err != nil {
		t.Fatal(err)
	}
	direct, err := CheckDigit([]byte("L898902C367408122"))
	if err != nil {
		t.Fatal(err)
	}
	if composite != direct {
		t.Errorf("CompositeCheck = %d, concatenated CheckDigit = %d", composite, direct)
	}
}
