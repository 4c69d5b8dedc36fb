// Package vtime defines the simulator's two time scales: the real-time
// second-resolution clock every I/O record is stamped with, and the coarse
// ten-minute vtime grid the input dataset samples on.
package vtime

const (
	// Minute is one minute in simulator seconds.
	Minute = 60
	// MinutesInVtime is the number of real minutes one vtime unit spans.
	MinutesInVtime = 10
	// SecondsInVtime is one vtime unit in simulator seconds (600).
	SecondsInVtime = MinutesInVtime * Minute
)
