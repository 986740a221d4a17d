package types

import "fmt"

// Likelihood represents a 5-point ordinal likelihood scale
type Likelihood string

const (
	LikelihoodRare          Likelihood = "rare"
	LikelihoodUnlikely      Likelihood = "unlikely"
	LikelihoodPossible      Likelihood = "possible"
	LikelihoodLikely        Likelihood = "likely"
	LikelihoodAlmostCertain Likelihood = "almost_certain"
)

// AllLikelihoods returns all valid likelihood levels, lowest first
func AllLikelihoods() []Likelihood {
	return []Likelihood{
		LikelihoodRare,
		LikelihoodUnlikely,
		LikelihoodPossible,
		LikelihoodLikely,
		LikelihoodAlmostCertain,
	}
}

// IsValid checks if the likelihood is valid
func (l Likelihood) IsValid() bool {
	switch l {
	case LikelihoodRare,
		LikelihoodUnlikely,
		LikelihoodPossible,
		LikelihoodLikely,
		LikelihoodAlmostCertain:
		return true
	default:
		return false
	}
}

// Score returns the ordinal score of the likelihood (1-5), 0 if invalid
func (l Likelihood) Score() int {
	switch l {
	case LikelihoodRare:
		return 1
	case LikelihoodUnlikely:
		return 2
	case LikelihoodPossible:
		return 3
	case LikelihoodLikely:
		return 4
	case LikelihoodAlmostCertain:
		return 5
	default:
		return 0
	}
}

// String returns the string representation of the likelihood
func (l Likelihood) String() string {
	return string(l)
}

// ParseLikelihood parses a string into a Likelihood
func ParseLikelihood(s string) (Likelihood, error) {
	l := Likelihood(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid likelihood: %s", s)
	}
	return l, nil
}
