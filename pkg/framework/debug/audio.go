package debug

import (
	"fmt"
	"math"
	"strings"
)

// AudioAnalyzer provides utilities for analyzing audio buffers.
type AudioAnalyzer struct {
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default settings.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		clippingThreshold: 0.99,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// SetSilenceThreshold sets the RMS below which a buffer counts as silent.
func (a *AudioAnalyzer) SetSilenceThreshold(threshold float32) {
	a.silenceThreshold = threshold
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	NaNCount       int
	InfCount       int
	FirstNonFinite int // -1 when every sample is finite
	ZeroCrossings  int
}

// Finite reports whether the buffer held no NaN or Inf samples.
func (r AnalysisResult) Finite() bool {
	return r.NaNCount == 0 && r.InfCount == 0
}

// Analyze performs analysis on an audio buffer. Non-finite samples are
// counted and excluded from level statistics.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	result := AnalysisResult{FirstNonFinite: -1}

	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares float64
	var lastSample float32
	counted := 0

	for i, sample := range buffer {
		v := float64(sample)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if math.IsNaN(v) {
				result.NaNCount++
			} else {
				result.InfCount++
			}
			if result.FirstNonFinite < 0 {
				result.FirstNonFinite = i
			}
			continue
		}

		absSample := float32(math.Abs(v))
		if absSample > result.Peak {
			result.Peak = absSample
		}
		if absSample >= a.clippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += v
		sumSquares += v * v

		if counted > 0 && ((lastSample < 0 && sample >= 0) || (lastSample >= 0 && sample < 0)) {
			result.ZeroCrossings++
		}
		lastSample = sample
		counted++
	}

	if counted > 0 {
		result.RMS = float32(math.Sqrt(sumSquares / float64(counted)))
		result.DC = float32(sum / float64(counted))
	}
	result.Silent = result.Finite() && result.RMS < a.silenceThreshold

	return result
}

// CompareBuffers compares two audio buffers and reports differences.
func CompareBuffers(a, b []float32, tolerance float32) string {
	if len(a) != len(b) {
		return fmt.Sprintf("Buffer length mismatch: %d vs %d", len(a), len(b))
	}

	var maxDiff float64
	var maxDiffIndex int
	var totalDiff float64
	var diffCount int

	for i := range a {
		diff := math.Abs(float64(a[i]) - float64(b[i]))
		if math.IsNaN(diff) {
			diff = math.Inf(1)
		}
		if diff <= float64(tolerance) {
			continue
		}

		diffCount++
		totalDiff += diff
		if diff > maxDiff {
			maxDiff = diff
			maxDiffIndex = i
		}
	}

	if diffCount == 0 {
		return "Buffers are identical within tolerance"
	}

	return fmt.Sprintf("Buffer differences:\n"+
		"  Samples different: %d / %d (%.1f%%)\n"+
		"  Max difference: %.6g at sample %d (%g vs %g)\n"+
		"  Average difference: %.6g\n"+
		"  Tolerance: %.6g",
		diffCount, len(a), float64(diffCount)/float64(len(a))*100,
		maxDiff, maxDiffIndex, a[maxDiffIndex], b[maxDiffIndex],
		totalDiff/float64(diffCount),
		tolerance)
}

// CheckBuffer performs basic sanity checks on an audio buffer.
func CheckBuffer(buffer []float32, name string) []string {
	var issues []string

	analyzer := NewAudioAnalyzer()
	result := analyzer.Analyze(buffer)

	if result.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d NaN values", name, result.NaNCount))
	}
	if result.InfCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d infinite values", name, result.InfCount))
	}
	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(analyzer.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}

	return issues
}

// DumpBuffer creates a detailed dump of an audio buffer for debugging.
func DumpBuffer(buffer []float32, maxSamples int) string {
	if len(buffer) == 0 {
		return "Empty buffer"
	}

	if maxSamples <= 0 || maxSamples > len(buffer) {
		maxSamples = len(buffer)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Audio Buffer Dump (%d samples, showing first %d):\n", len(buffer), maxSamples)
	sb.WriteString("Index | Value      | Hex        | Bar\n")
	sb.WriteString("------|------------|------------|--------------------\n")

	const barWidth = 20
	for i := 0; i < maxSamples; i++ {
		sample := buffer[i]

		normalized := max(-1, min(1, sample))
		bar := []byte(strings.Repeat(" ", barWidth))
		if pos := int((normalized + 1.0) * barWidth / 2.0); pos >= 0 && pos < barWidth {
			bar[pos] = '|'
		}

		fmt.Fprintf(&sb, "%5d | %+.6f | 0x%08X | %s\n", i, sample, math.Float32bits(sample), bar)
	}

	if maxSamples < len(buffer) {
		fmt.Fprintf(&sb, "... %d more samples ...\n", len(buffer)-maxSamples)
	}

	return sb.String()
}

// LogBufferStats logs statistics about an audio buffer at debug level.
func LogBufferStats(l *Logger, buffer []float32, name string) {
	result := NewAudioAnalyzer().Analyze(buffer)

	l.Zerolog().Debug().
		Str("buffer", name).
		Int("samples", len(buffer)).
		Float32("peak", result.Peak).
		Float32("rms", result.RMS).
		Float32("dc", result.DC).
		Bool("silent", result.Silent).
		Int("clipped", result.ClippedSamples).
		Int("nan", result.NaNCount).
		Int("inf", result.InfCount).
		Msg("buffer stats")
}
