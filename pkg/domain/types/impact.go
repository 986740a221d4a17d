package types

import "fmt"

// Impact represents a 5-point ordinal impact scale
type Impact string

const (
	ImpactNegligible Impact = "negligible"
	ImpactMinor      Impact = "minor"
	ImpactModerate   Impact = "moderate"
	ImpactMajor      Impact = "major"
	ImpactSevere     Impact = "severe"
)

// AllImpacts returns all valid impact levels, lowest first
func AllImpacts() []Impact {
	return []Impact{
		ImpactNegligible,
		ImpactMinor,
		ImpactModerate,
		ImpactMajor,
		ImpactSevere,
	}
}

// IsValid checks if the impact is valid
func (i Impact) IsValid() bool {
	switch i {
	case ImpactNegligible,
		ImpactMinor,
		ImpactModerate,
		ImpactMajor,
		ImpactSevere:
		return true
	default:
		return false
	}
}

// Score returns the ordinal score of the impact (1-5), 0 if invalid
func (i Impact) Score() int {
	switch i {
	case ImpactNegligible:
		return 1
	case ImpactMinor:
		return 2
	case ImpactModerate:
		return 3
	case ImpactMajor:
		return 4
	case ImpactSevere:
		return 5
	default:
		return 0
	}
}

// String returns the string representation of the impact
func (i Impact) String() string {
	return string(i)
}

// ParseImpact parses a string into an Impact
func ParseImpact(s string) (Impact, error) {
	i := Impact(s)
	if !i.IsValid() {
		return "", fmt.Errorf("invalid impact: %s", s)
	}
	return i, nil
}
