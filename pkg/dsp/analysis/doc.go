// Package analysis provides spectral inspection of rendered audio.
//
// It is used to describe what a plugin produced rather than to judge it:
// the dominant frequency of an output block is reported alongside level
// statistics so a failing smoke run shows more than a pass/fail bit.
//
// Example usage:
//
//	s, err := analysis.NewSpectrum(1024, analysis.HannWindow)
//	if err != nil {
//	    return err
//	}
//	freq, mag := s.PeakFrequency(samples, 44100)
package analysis
