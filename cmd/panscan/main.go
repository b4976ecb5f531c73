// Package main provides the entry point for the panscan CLI.
//
// panscan sweeps a pan-mounted camera across a room, captures object
// detections at each stop, and reports the deduplicated objects it found.
//
// Usage:
//
//	panscan scan
//	panscan serve
//
// See --help for all available options.
package main

// main is the entry point for panscan.
func main() {
	Execute()
}
