// Package scan sweeps a pan-mounted camera across a room in discrete
// steps, samples object detections at each step, and collapses
// re-observations of the same physical object (seen from overlapping
// fields of view) into one canonical record per object.
//
// The algorithmic core is hardware-independent and implemented exactly
// once: the Scanner orchestrates positions and capture through the small
// Camera and ServoController interfaces, then runs the pure Smoother and
// Deduplicator stages over the accumulated detections. Both the blocking
// Scan and the cooperative Start entry points call the same internal run
// loop, so ordering and results are identical in either mode.
package scan
