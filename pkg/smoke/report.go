package smoke

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/subrou-audio/subrou/pkg/audio"
	"github.com/subrou-audio/subrou/pkg/dsp/gain"
)

// Result describes one scenario that ran.
type Result struct {
	Scenario   string
	SampleRate float64
	Shape      audio.Shape
	Passed     []Check
	Channels   []audio.Stats
	PeakHz     float64
	Duration   time.Duration
	CPULoad    float64
}

// Report collects the results of a run.
type Report struct {
	Plugin  string
	Results []Result
	Elapsed time.Duration
}

// String renders the report as an aligned table.
func (r *Report) String() string {
	var sb strings.Builder
	if r.Plugin != "" {
		fmt.Fprintf(&sb, "plugin: %s\n", r.Plugin)
	}

	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tRATE\tSHAPE\tCHECKS\tPEAK\tRMS\tFREQ\tTIME")
	for _, res := range r.Results {
		peak, rms := res.loudest()
		checks := make([]string, len(res.Passed))
		for i, c := range res.Passed {
			checks[i] = string(c)
		}
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\t%s\t%s\t%.1f Hz\t%v\n",
			res.Scenario, res.SampleRate, res.Shape, strings.Join(checks, ","),
			dbfs(peak), dbfs(rms), res.PeakHz, res.Duration.Round(time.Microsecond))
	}
	_ = tw.Flush()
	return sb.String()
}

// loudest returns the highest peak and RMS across channels.
func (r Result) loudest() (peak, rms float64) {
	for _, s := range r.Channels {
		peak = max(peak, s.Peak)
		rms = max(rms, s.RMS)
	}
	return peak, rms
}

func dbfs(linear float64) string {
	if linear <= 0 {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", gain.LinearToDb(linear))
}
