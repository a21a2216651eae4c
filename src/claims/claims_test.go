package claims

import (
	"errors"
	"testing"
)

func specimenClaim() PassportClaim {
	return PassportClaim{
		Number:      "L898902C36",
		BirthDate:   "7408122",
		ExpiryDate:  "1204159",
		Nationality: "UTO",
		Mode:        ModePhysical,
	}
}

func TestValidateAcceptsSpecimen(t *testing.T) {
	if err := specimenClaim().Validate(); err != nil {
		t.Fatalf("specimen claim should validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PassportClaim)
	}{
		{"short number", func(c *PassportClaim) { c.Number = "L898902C3" }},
		{"lowercase number", func(c *PassportClaim) { c.Number = "l898902C36" }},
		{"short birth date", func(c *PassportClaim) { c.BirthDate = "740812" }},
		{"letter in birth date", func(c *PassportClaim) { c.BirthDate = "74O8122" }},
		{"short expiry date", func(c *PassportClaim) { c.ExpiryDate = "120415" }},
		{"long nationality", func(c *PassportClaim) { c.Nationality = "UTOP" }},
		{"digit in nationality", func(c *PassportClaim) { c.Nationality = "U1O" }},
		{"zero mode", func(c *PassportClaim) { c.Mode = 0 }},
		{"unknown mode", func(c *PassportClaim) { c.Mode = 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := specimenClaim()
			tt.mutate(&claim)
			if err := claim.Validate(); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for input, expected := range map[string]VerificationMode{
		"physical":   ModePhysical,
		"e-passport": ModeEpassport,
		"epassport":  ModeEpassport,
	} {
		mode, err := ParseMode(input)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", input, err)
		}
		if mode != expected {
			t.Errorf("ParseMode(%q) = %v, expected %v", input, mode, expected)
		}
	}

	if _, err := ParseMode("biometric"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown mode, got %v", err)
	}
}

func TestHashDeterministic(t *testing.T) {
	first, err := Hash(specimenClaim())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Hash(specimenClaim())
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(&second) {
		t.Error("hashing the same claim twice produced different digests")
	}
}

func TestHashFieldOrderSensitive(t *testing.T) {
	claim := specimenClaim()
	base, err := Hash(claim)
	if err != nil {
		t.Fatal(err)
	}

	// Swap two date fields that share a format.
	swapped := claim
	swapped.BirthDate, swapped.ExpiryDate = claim.ExpiryDate, claim.BirthDate
	other, err := Hash(swapped)
	if err != nil {
		t.Fatal(err)
	}

	if base.Equal(&other) {
		t.Error("swapping birth and expiry dates should change the passport hash")
	}
}

func TestHashSensitiveToEveryField(t *testing.T) {
	base, err := Hash(specimenClaim())
	if err != nil {
		t.Fatal(err)
	}

	mutations := []func(*PassportClaim){
		func(c *PassportClaim) { c.Number = "L898902C43" },
		func(c *PassportClaim) { c.BirthDate = "7408133" },
		func(c *PassportClaim) { c.ExpiryDate = "1204160" },
		func(c *PassportClaim) { c.Nationality = "UTB" },
	}
	for i, mutate := range mutations {
		claim := specimenClaim()
		mutate(&claim)
		digest, err := Hash(claim)
		if err != nil {
			t.Fatal(err)
		}
		if base.Equal(&digest) {
			t.Errorf("mutation %d did not change the passport hash", i)
		}
	}
}

func TestHashRejectsInvalidClaim(t *testing.T) {
	claim := specimenClaim()
	claim.Number = "bad"
	if _, err := Hash(claim); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestEncodeDecodeHash(t *testing.T) {
	digest, err := Hash(specimenClaim())
	if err != nil {
		t.Fatal(err)
	}

	encoded := EncodeHash(digest)
	decoded, err := DecodeHash(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !digest.Equal(&decoded) {
		t.Error("decode(encode(hash)) did not round-trip")
	}

	if _, err := DecodeHash("not-base58-0OIl"); err == nil {
		t.Error("expected decode error for invalid base58")
	}
}
