package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/grclab/riskflow/pkg/domain/types"
)

func TestCalculateRiskLevel(t *testing.T) {
	tests := []struct {
		name       string
		likelihood types.Likelihood
		impact     types.Impact
		want       types.RiskLevel
	}{
		{
			name:       "rare negligible is very low",
			likelihood: types.LikelihoodRare,
			impact:     types.ImpactNegligible,
			want:       types.RiskLevelVeryLow,
		},
		{
			name:       "rare minor is very low",
			likelihood: types.LikelihoodRare,
			impact:     types.ImpactMinor,
			want:       types.RiskLevelVeryLow,
		},
		{
			name:       "rare severe is low",
			likelihood: types.LikelihoodRare,
			impact:     types.ImpactSevere,
			want:       types.RiskLevelLow,
		},
		{
			name:       "possible moderate is medium",
			likelihood: types.LikelihoodPossible,
			impact:     types.ImpactModerate,
			want:       types.RiskLevelMedium,
		},
		{
			name:       "likely major is high",
			likelihood: types.LikelihoodLikely,
			impact:     types.ImpactMajor,
			want:       types.RiskLevelHigh,
		},
		{
			name:       "almost certain severe is very high",
			likelihood: types.LikelihoodAlmostCertain,
			impact:     types.ImpactSevere,
			want:       types.RiskLevelVeryHigh,
		},
		{
			name:       "likely severe is very high",
			likelihood: types.LikelihoodLikely,
			impact:     types.ImpactSevere,
			want:       types.RiskLevelVeryHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, types.CalculateRiskLevel(tt.likelihood, tt.impact)).Equal(tt.want)
		})
	}
}

func TestCalculateRiskLevel_Monotonic(t *testing.T) {
	likelihoods := types.AllLikelihoods()
	impacts := types.AllImpacts()

	t.Run("increasing likelihood never lowers the level", func(t *testing.T) {
		for _, impact := range impacts {
			prev := 0
			for _, likelihood := range likelihoods {
				level := types.CalculateRiskLevel(likelihood, impact)
				gt.B(t, level.IsValid()).True()
				if level.Score() < prev {
					t.Errorf("level dropped from %d to %d at (%s, %s)",
						prev, level.Score(), likelihood, impact)
				}
				prev = level.Score()
			}
		}
	})

	t.Run("increasing impact never lowers the level", func(t *testing.T) {
		for _, likelihood := range likelihoods {
			prev := 0
			for _, impact := range impacts {
				level := types.CalculateRiskLevel(likelihood, impact)
				gt.B(t, level.IsValid()).True()
				if level.Score() < prev {
					t.Errorf("level dropped from %d to %d at (%s, %s)",
						prev, level.Score(), likelihood, impact)
				}
				prev = level.Score()
			}
		}
	})
}

func TestCalculateRiskLevel_Idempotent(t *testing.T) {
	for _, likelihood := range types.AllLikelihoods() {
		for _, impact := range types.AllImpacts() {
			first := types.CalculateRiskLevel(likelihood, impact)
			second := types.CalculateRiskLevel(likelihood, impact)
			gt.Value(t, first).Equal(second)
		}
	}
}

func TestCalculateRiskLevel_InvalidInput(t *testing.T) {
	gt.Value(t, types.CalculateRiskLevel("", types.ImpactSevere)).Equal(types.RiskLevel(""))
	gt.Value(t, types.CalculateRiskLevel(types.LikelihoodRare, "")).Equal(types.RiskLevel(""))
}
