// Package profile provides optional runtime profiling for tmplc.
//
// # Overview
//
// This package integrates [github.com/pkg/profile]. Profiling must be enabled
// at build time with the "pprof" build tag:
//
//	go build -tags pprof -o tmplc .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// Profile files are written to Path with names matching the mode (e.g.,
// cpu.pprof, mem.pprof). The tmplc command exposes the same settings as
// --pprof-mode and --pprof-dir, defaulting to the pprof directory under the
// user cache directory:
//
//	tmplc --pprof-mode=cpu render --sample '`${LENGTH(GET("ARR"))}`'
//	go tool pprof -http=: ~/.cache/tmplc/pprof/cpu.pprof
//
// Building with the tag also imports [net/http/pprof], which registers its
// handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
