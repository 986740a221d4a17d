package types

import "fmt"

// RiskLevel represents the 5-level risk classification derived from
// likelihood and impact
type RiskLevel string

const (
	RiskLevelVeryLow  RiskLevel = "very_low"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelVeryHigh RiskLevel = "very_high"
)

// AllRiskLevels returns all valid risk levels, lowest first
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelVeryLow,
		RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh,
		RiskLevelVeryHigh,
	}
}

// IsValid checks if the risk level is valid
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelVeryLow,
		RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh,
		RiskLevelVeryHigh:
		return true
	default:
		return false
	}
}

// Score returns the ordinal score of the risk level (1-5), 0 if invalid
func (r RiskLevel) Score() int {
	switch r {
	case RiskLevelVeryLow:
		return 1
	case RiskLevelLow:
		return 2
	case RiskLevelMedium:
		return 3
	case RiskLevelHigh:
		return 4
	case RiskLevelVeryHigh:
		return 5
	default:
		return 0
	}
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	level := RiskLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return level, nil
}

// CalculateRiskLevel maps a likelihood/impact pair onto the 5-level
// classification using the standard 5x5 heat map bands. The same function
// serves inherent risk (at assessment) and residual risk (after mitigation).
// Increasing either input while holding the other fixed never lowers the
// result.
func CalculateRiskLevel(likelihood Likelihood, impact Impact) RiskLevel {
	score := likelihood.Score() * impact.Score()
	switch {
	case score <= 0:
		return ""
	case score <= 2:
		return RiskLevelVeryLow
	case score <= 5:
		return RiskLevelLow
	case score <= 10:
		return RiskLevelMedium
	case score <= 19:
		return RiskLevelHigh
	default:
		return RiskLevelVeryHigh
	}
}
