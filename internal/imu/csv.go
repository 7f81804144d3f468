package imu

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEmptyUpload is returned when an upload contains no non-blank lines.
var ErrEmptyUpload = fmt.Errorf("upload contains no data")

// ParseCSV parses comma-delimited sensor text into a Series. The first
// non-blank line names the channels; every later line is matched to the
// headers positionally. Cells that fail to parse, or parse to NaN/Inf,
// become 0 rather than failing the load; a single bad cell must never cost
// the whole dataset. The only hard failure is an upload with zero non-blank
// lines.
//
// rate must be positive; callers normally pass DefaultSampleRateHz. The
// derived time axis satisfies Times[i] = i/rate.
func ParseCSV(raw string, rate float64) (*Series, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", rate)
	}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyUpload
	}

	headers := splitFields(lines[0])
	samples := make([]Sample, 0, len(lines)-1)
	times := make([]float64, 0, len(lines)-1)

	for i, line := range lines[1:] {
		fields := splitFields(line)
		sample := make(Sample, len(headers))
		for j, name := range headers {
			var v float64
			if j < len(fields) {
				v = coerceCell(fields[j])
			}
			sample[name] = v
		}
		samples = append(samples, sample)
		times = append(times, float64(i)/rate)
	}

	return &Series{
		Headers: headers,
		Samples: samples,
		Times:   times,
		Rate:    rate,
	}, nil
}

// CSV renders the series back into upload form: the header line followed by
// one row per sample, channels in header order.
func (s *Series) CSV() string {
	var b strings.Builder
	b.WriteString(strings.Join(s.Headers, ","))
	b.WriteByte('\n')
	row := make([]string, len(s.Headers))
	for _, sample := range s.Samples {
		for j, name := range s.Headers {
			row[j] = strconv.FormatFloat(sample[name], 'g', -1, 64)
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// coerceCell applies the lenient numeric policy: anything that is not a
// finite number becomes 0.
func coerceCell(field string) float64 {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
