package claims

import (
	"errors"
	"fmt"
)

type VerificationMode uint8

const (
	ModePhysical  VerificationMode = 1
	ModeEpassport VerificationMode = 2
)

func (m VerificationMode) String() string {
	switch m {
	case ModePhysical:
		return "physical"
	case ModeEpassport:
		return "e-passport"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

func ParseMode(s string) (VerificationMode, error) {
	switch s {
	case "physical":
		return ModePhysical, nil
	case "e-passport", "epassport":
		return ModeEpassport, nil
	default:
		return 0, fmt.Errorf("%w: unknown verification mode %q", ErrValidation, s)
	}
}

var ErrValidation = errors.New("malformed passport claim")

// PassportClaim is the immutable verification input. Each date field is the
// raw digit string including its ICAO check digit; the passport number
// likewise carries its check digit as the tenth character.
type PassportClaim struct {
	Number      string
	BirthDate   string
	ExpiryDate  string
	Nationality string
	Mode        VerificationMode
}

const (
	numberLength      = 10 // 9 characters + check digit
	dateLength        = 7  // YYMMDD + check digit
	nationalityLength = 3
)

func (c PassportClaim) Validate() error {
	if len(c.Number) != numberLength {
		return fmt.Errorf("%w: passport number must be %d characters, got %d", ErrValidation, numberLength, len(c.Number))
	}
	if err := validateMrzCharset(c.Number); err != nil {
		return fmt.Errorf("%w: passport number: %v", ErrValidation, err)
	}

	if err := validateDate(c.BirthDate, "birth date"); err != nil {
		return err
	}
	if err := validateDate(c.ExpiryDate, "expiry date"); err != nil {
		return err
	}

	if len(c.Nationality) != nationalityLength {
		return fmt.Errorf("%w: nationality must be %d characters, got %d", ErrValidation, nationalityLength, len(c.Nationality))
	}
	for i := 0; i < len(c.Nationality); i++ {
		ch := c.Nationality[i]
		if (ch < 'A' || ch > 'Z') && ch != '<' {
			return fmt.Errorf("%w: nationality contains invalid character %q", ErrValidation, ch)
		}
	}

	if c.Mode != ModePhysical && c.Mode != ModeEpassport {
		return fmt.Errorf("%w: unsupported verification mode %d", ErrValidation, c.Mode)
	}

	return nil
}

func validateDate(date, name string) error {
	if len(date) != dateLength {
		return fmt.Errorf("%w: %s must be %d digits, got %d", ErrValidation, name, dateLength, len(date))
	}
	for i := 0; i < len(date); i++ {
		if date[i] < '0' || date[i] > '9' {
			return fmt.Errorf("%w: %s contains non-digit character %q", ErrValidation, name, date[i])
		}
	}
	return nil
}

func validateMrzCharset(s string) error {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		digit := ch >= '0' && ch <= '9'
		upper := ch >= 'A' && ch <= 'Z'
		if !digit && !upper && ch != '<' {
			return fmt.Errorf("invalid MRZ character %q", ch)
		}
	}
	return nil
}
