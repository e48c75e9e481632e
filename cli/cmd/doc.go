// Package cmd implements the tmplc subcommands: render, vars, tokens, ast,
// emit, fmt, init and repl.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"

	// PolicyIdentifier is the kong variable identifier listing the names
	// accepted by --missing.
	PolicyIdentifier = "missingPolicies"
)
