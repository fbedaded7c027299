package dispatch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights bundles the cost-function and selector tuning constants into a
// single record, following the teacher's pattern of grouping tunable
// numeric parameters rather than scattering them as package-level consts
// (see sim/config.go's *Config groupings). Unlike sim/bundle.go's
// PolicyBundle, nothing in this module loads Weights from a flag or an
// environment variable at run time — cmd run always uses DefaultWeights().
// LoadWeights exists for offline tuning tooling and test fixtures only.
type Weights struct {
	WDeadline   float64 `yaml:"w_deadline"`   // deadline-overshoot penalty weight
	PMig        float64 `yaml:"p_mig"`        // base migration penalty
	WLoad       float64 `yaml:"w_load"`       // load-imbalance penalty weight
	WEff        float64 `yaml:"w_eff"`        // efficiency-bonus weight
	BetaSize    float64 `yaml:"beta_size"`    // batch-size search bonus coefficient
	TauUrgent   float64 `yaml:"tau_urgent"`   // deadline-slack threshold for the urgent short-circuit
	ThetaUrgent float64 `yaml:"theta_urgent"` // urgency threshold for the urgent short-circuit and selector determinism
	TLate       float64 `yaml:"t_late"`       // time after which the selector widens top-k
	TopK        int     `yaml:"top_k"`        // default top-k breadth outside the late/urgent/scarce regimes
}

// DefaultWeights returns the fixed weight bundle this module ships with,
// matching SPEC_FULL.md §4.4-4.5 exactly.
func DefaultWeights() Weights {
	return Weights{
		WDeadline:   10_000,
		PMig:        30,
		WLoad:       5,
		WEff:        50,
		BetaSize:    0.1,
		TauUrgent:   3000,
		ThetaUrgent: 0.8,
		TLate:       30_000,
		TopK:        1,
	}
}

// LoadWeights reads a YAML weight bundle from path, for offline tuning
// experiments and test fixtures. Never called by the cmd run path.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("dispatch: reading weights file: %w", err)
	}
	w := DefaultWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("dispatch: parsing weights file: %w", err)
	}
	return w, nil
}
