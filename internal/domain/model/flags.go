package model

// Flag is a qualitative marker drawn from a fixed closed vocabulary.
type Flag string

// The closed flag vocabulary.
const (
	FlagPromotionReady      Flag = "promotion_ready"
	FlagFlightRisk          Flag = "flight_risk"
	FlagNewToRole           Flag = "new_to_role"
	FlagSuccessionCandidate Flag = "succession_candidate"
	FlagNeedsCoaching       Flag = "needs_coaching"
	FlagHighImpact          Flag = "high_impact"
)

// KnownFlags returns the closed vocabulary in a stable order.
func KnownFlags() []Flag {
	return []Flag{
		FlagPromotionReady,
		FlagFlightRisk,
		FlagNewToRole,
		FlagSuccessionCandidate,
		FlagNeedsCoaching,
		FlagHighImpact,
	}
}

// IsValid reports whether the flag belongs to the closed vocabulary.
// Validation happens at the request layer; the engine itself trusts
// its callers.
func (f Flag) IsValid() bool {
	switch f {
	case FlagPromotionReady, FlagFlightRisk, FlagNewToRole,
		FlagSuccessionCandidate, FlagNeedsCoaching, FlagHighImpact:
		return true
	default:
		return false
	}
}
