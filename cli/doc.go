// Package cli contains the command line interface for tmplc.
//
// # Usage
//
// Render is the default command, so a template may be given directly:
//
//	tmplc '`hello ${GET("NAME")}`' --set NAME=world
//	tmplc render --sample '`${LENGTH(GET("ARR"))}`'
//
// Templates are read from the positional argument, from --file, or from
// stdin when neither is given. The remaining commands inspect a template
// without rendering it:
//
//	tmplc vars   '`${GET("A")}${GET("B")}`'
//	tmplc tokens --format=json '`${1 < 2}`'
//	tmplc ast    '`${IF(TRUE, "y", "n")}`'
//	tmplc emit   '`a${GET("X")}`'
//	tmplc fmt    --check '`${GET( "X" )}`'
//
// The repl command starts an interactive session with history, completion
// and signature hints.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory. Keys name flags without their leading dashes, and nested
// mappings are joined with a hyphen. The init command writes the current
// global flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o tmplc .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/tmplc/pprof)
package cli
