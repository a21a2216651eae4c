package attestation

import "context"

// HologramResult is the hologram collaborator's verdict on one media scan.
type HologramResult struct {
	Valid      bool
	Confidence float64
	Details    string
}

// HologramChecker inspects the scanned document media for a genuine
// hologram. Production deployments back this with an external image
// analysis service.
type HologramChecker interface {
	Check(ctx context.Context, media []byte) (HologramResult, error)
}

// BlacklistChecker answers whether a passport number appears on a
// stop list.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, passportNumber string) (bool, error)
}

// StaticHologramChecker returns a fixed verdict. Used when hologram
// analysis runs out of process and the caller forwards its result, and in
// tests.
type StaticHologramChecker struct {
	Result HologramResult
}

func (c StaticHologramChecker) Check(_ context.Context, _ []byte) (HologramResult, error) {
	return c.Result, nil
}

// StaticBlacklist is an in-memory stop list keyed by passport number.
type StaticBlacklist struct {
	Numbers map[string]struct{}
}

func NewStaticBlacklist(numbers ...string) StaticBlacklist {
	set := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return StaticBlacklist{Numbers: set}
}

func (b StaticBlacklist) IsBlacklisted(_ context.Context, passportNumber string) (bool, error) {
	_, found := b.Numbers[passportNumber]
	return found, nil
}
