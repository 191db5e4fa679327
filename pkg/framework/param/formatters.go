package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/subrou-audio/subrou/pkg/dsp/gain"
)

// FrequencyFormatter formats frequency values with Hz/kHz
func FrequencyFormatter(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f Hz", hz)
}

// FrequencyParser parses frequency strings
func FrequencyParser(str string) (float64, error) {
	str = strings.TrimSpace(str)
	lower := strings.ToLower(str)

	if strings.HasSuffix(lower, "khz") {
		val, err := strconv.ParseFloat(strings.TrimSpace(str[:len(str)-3]), 64)
		if err != nil {
			return 0, err
		}
		return val * 1000, nil
	}

	if strings.HasSuffix(lower, "hz") {
		str = str[:len(str)-2]
	}
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// DecibelFormatter formats dB values
func DecibelFormatter(db float64) string {
	if db <= -100 {
		return "-inf dB"
	}
	db = math.Round(db*100) / 100
	if db == 0 {
		db = 0 // drop the sign of -0
	}
	return fmt.Sprintf("%.2f dB", db)
}

// DecibelParser parses dB strings
func DecibelParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	if strings.Contains(str, "inf") || strings.Contains(str, "∞") {
		return gain.MinDB, nil
	}
	str = strings.TrimSpace(strings.TrimSuffix(str, "db"))
	return strconv.ParseFloat(str, 64)
}

// GainFormatter shows a linear gain in dB.
func GainFormatter(linear float64) string {
	return DecibelFormatter(gain.LinearToDb(linear))
}

// GainParser parses a dB string into a linear gain.
func GainParser(str string) (float64, error) {
	db, err := DecibelParser(str)
	if err != nil {
		return 0, err
	}
	return gain.DbToLinear(db), nil
}

// IntegerFormatter formats stepped values without decimals
func IntegerFormatter(value float64) string {
	return strconv.Itoa(int(math.Round(value)))
}
