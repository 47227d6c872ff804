package models

import (
	"errors"
	"time"
)

// ModelVersion is the artifact schema version written by the trainer.
const ModelVersion = 1

// FeatureRowIndex is the only feature the trainer fits on.
const FeatureRowIndex = "row_index"

var ErrUnsupportedModelVersion = errors.New("unsupported model version")

// Model is the persisted regression artifact. OriginMs and StepMs map a
// timestamp onto the row index the model was fit on.
type Model struct {
	Version   int       `json:"version"`
	Feature   string    `json:"feature"`
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	OriginMs  int64     `json:"origin_ms"`
	StepMs    float64   `json:"step_ms"`
	Samples   int       `json:"samples"`
	R2        float64   `json:"r2"`
	MSE       float64   `json:"mse"`
	Coin      string    `json:"coin,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	TrainedAt time.Time `json:"trained_at"`
}

// Check rejects artifacts this build cannot serve.
func (m *Model) Check() error {
	if m.Version != ModelVersion {
		return ErrUnsupportedModelVersion
	}
	if m.Feature != FeatureRowIndex {
		return errors.New("unsupported model feature: " + m.Feature)
	}
	return nil
}

// Index maps a Unix millisecond timestamp to the row-index feature. The
// offset is taken in float64 so timestamps far from the origin never wrap.
func (m *Model) Index(tsMs int64) float64 {
	if m.StepMs == 0 {
		return 0
	}
	return (float64(tsMs) - float64(m.OriginMs)) / m.StepMs
}

// PredictIndex evaluates the fitted line at a row index.
func (m *Model) PredictIndex(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// EventModelTrained is published after a successful training run.
const EventModelTrained = "model.trained"

// ModelEvent announces a new artifact.
type ModelEvent struct {
	Type  string `json:"type"`
	Model Model  `json:"model"`
}
