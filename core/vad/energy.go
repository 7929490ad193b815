package vad

import "math"

// referenceRMS maps a full-scale RMS level to probability 1.0. Typical
// near-microphone speech sits around 0.02-0.10 of full scale.
const referenceRMS = 0.05

// EnergyModel is a pure-Go speech probability model based on RMS energy.
// It is the default when no external model is configured: coarse compared
// to a trained model, but dependency-free and adequate for quiet rooms.
type EnergyModel struct {
	reference float64
}

func NewEnergyModel() *EnergyModel {
	return &EnergyModel{reference: referenceRMS}
}

func (m *EnergyModel) Predict(frame []int16) (float64, error) {
	if len(frame) == 0 {
		return 0, nil
	}

	var sum float64
	for _, sample := range frame {
		normalized := float64(sample) / math.MaxInt16
		sum += normalized * normalized
	}
	rms := math.Sqrt(sum / float64(len(frame)))

	probability := rms / m.reference
	if probability > 1 {
		probability = 1
	}
	return probability, nil
}
