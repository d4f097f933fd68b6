// Package config loads and validates solshade configuration.
//
// Configuration comes from a YAML file with environment variable overrides
// (SOLSHADE_* pattern). Defaults are applied first, then file values, then
// environment variables, and the result is validated before use.
//
// The Niko hobby API token and controller host have no safe defaults and
// must always be provided, either in the file or via SOLSHADE_NIKO_TOKEN
// and SOLSHADE_NIKO_HOST.
package config
