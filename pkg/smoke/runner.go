// Package smoke runs coarse behavioural checks against a loaded plugin:
// silence stays silent, shapes are preserved and full-scale input is
// actually processed.
package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/subrou-audio/subrou/pkg/audio"
	"github.com/subrou-audio/subrou/pkg/dsp/analysis"
	"github.com/subrou-audio/subrou/pkg/framework/debug"
	"github.com/subrou-audio/subrou/pkg/host"
)

type runner struct {
	tol      audio.Tolerance
	log      *debug.Logger
	profiler *debug.Profiler
}

// Option configures Run and RunPath.
type Option func(*runner)

// WithTolerance sets the closeness tolerance used by value checks.
func WithTolerance(tol audio.Tolerance) Option {
	return func(r *runner) { r.tol = tol }
}

// WithLogger sets the logger. The default is the "smoke" component logger.
func WithLogger(l *debug.Logger) Option {
	return func(r *runner) { r.log = l }
}

// WithProfiler records the process time of every scenario in p.
func WithProfiler(p *debug.Profiler) Option {
	return func(r *runner) { r.profiler = p }
}

func newRunner(opts []Option) *runner {
	r := &runner{tol: audio.DefaultTolerance}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = debug.Component("smoke")
	}
	if r.profiler == nil {
		r.profiler = debug.NewProfiler()
	}
	return r
}

// RunPath loads path, runs the scenarios and closes the plugin whether or
// not they pass. Load failures wrap host.ErrLoad.
func RunPath(ctx context.Context, loader host.Loader, path string, scenarios []Scenario, opts ...Option) (*Report, error) {
	var report *Report
	err := host.With(ctx, loader, path, func(inst host.Instance) error {
		var err error
		report, err = Run(ctx, inst, scenarios, opts...)
		if report != nil {
			report.Plugin = path
		}
		return err
	})
	return report, err
}

// Run processes every scenario in order and stops at the first failed check,
// returning an *AssertionError. The report covers the scenarios that ran.
func Run(ctx context.Context, inst host.Instance, scenarios []Scenario, opts ...Option) (*Report, error) {
	r := newRunner(opts)
	report := &Report{Plugin: pluginName(inst)}

	for _, sc := range scenarios {
		if err := sc.Validate(); err != nil {
			return report, err
		}
	}

	start := time.Now()
	defer func() { report.Elapsed = time.Since(start) }()

	var input *audio.Buffer
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		// Consecutive scenarios of the same shape share one buffer, refilled
		// in place.
		if input == nil || input.Shape() != sc.Shape() {
			var err error
			if input, err = audio.New(sc.Channels, sc.Frames); err != nil {
				return report, fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
		}
		input.Fill(sc.Fill)

		result, err := r.runScenario(ctx, inst, sc, input)
		if result != nil {
			report.Results = append(report.Results, *result)
		}
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// dumpSamples bounds the output dump logged for a failed scenario.
const dumpSamples = 16

func (r *runner) runScenario(ctx context.Context, inst host.Instance, sc Scenario, input *audio.Buffer) (*Result, error) {
	stop := r.profiler.Start(sc.Name)
	out, err := inst.Process(ctx, input, sc.SampleRate)
	elapsed := stop()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: process: %w", sc.Name, err)
	}

	result := &Result{
		Scenario:   sc.Name,
		SampleRate: sc.SampleRate,
		Shape:      input.Shape(),
		Duration:   elapsed,
		CPULoad:    debug.CPULoad(elapsed, sc.Frames, sc.SampleRate),
	}

	for _, c := range sc.orderedChecks() {
		if detail := evaluate(c, input, out, r.tol); detail != "" {
			r.log.Zerolog().Error().
				Str("scenario", sc.Name).
				Str("check", string(c)).
				Msg(detail)
			if out != nil && out.Channels() > 0 {
				r.log.Debug("%s output:\n%s", sc.Name, debug.DumpBuffer(out.Channel(0), dumpSamples))
			}
			return result, &AssertionError{Scenario: sc.Name, Check: c, Detail: detail}
		}
		result.Passed = append(result.Passed, c)
	}

	result.Channels = out.ChannelStats()
	result.PeakHz = peakFrequency(out, sc.SampleRate)
	for ch := 0; ch < out.Channels(); ch++ {
		name := fmt.Sprintf("%s[%d]", sc.Name, ch)
		debug.LogBufferStats(r.log, out.Channel(ch), name)
		for _, issue := range debug.CheckBuffer(out.Channel(ch), name) {
			r.log.Info("%s", issue)
		}
	}

	r.log.Zerolog().Info().
		Str("scenario", sc.Name).
		Float64("sample_rate", sc.SampleRate).
		Stringer("shape", result.Shape).
		Dur("took", elapsed).
		Float64("peak_hz", result.PeakHz).
		Msg("scenario passed")
	return result, nil
}

// peakFrequency returns the dominant frequency of the first channel, or 0
// for silence and buffers too short to analyse.
func peakFrequency(buf *audio.Buffer, sampleRate float64) float64 {
	if buf.Frames() < 2 {
		return 0
	}
	spectrum, err := analysis.NewSpectrum(buf.Frames(), analysis.HannWindow)
	if err != nil {
		return 0
	}

	freq, _, err := spectrum.PeakFrequency(buf.Channel(0), sampleRate)
	if err != nil {
		return 0
	}
	return freq
}

func pluginName(inst host.Instance) string {
	if n, ok := inst.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}
