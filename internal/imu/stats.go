package imu

import "gonum.org/v1/gonum/stat"

// ChannelSummary holds descriptive statistics for one channel, used by the
// session report and the dataset status endpoint.
type ChannelSummary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes per-channel statistics for the canonical channels.
// Returns nil for an empty series.
func Summarize(s *Series) []ChannelSummary {
	if s.Len() == 0 {
		return nil
	}
	out := make([]ChannelSummary, 0, len(ChannelNames))
	for _, name := range ChannelNames {
		values := s.Channel(name)
		mean, std := stat.MeanStdDev(values, nil)
		if len(values) < 2 {
			// MeanStdDev yields NaN variance for a single observation.
			std = 0
		}
		min, max := values[0], values[0]
		for _, v := range values {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		out = append(out, ChannelSummary{
			Name:   name,
			Mean:   mean,
			StdDev: std,
			Min:    min,
			Max:    max,
		})
	}
	return out
}
