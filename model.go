package trend

import (
	"github.com/aouyang1/go-trend/fit"
)

// Model is a serializable representation of the analyzer options and the
// fitted trend model. It can initialize a new Analyzer for evaluation
// skipping the training step.
type Model struct {
	Options    *Options   `json:"options"`
	TrendModel *fit.Model `json:"trend_model"`
}
