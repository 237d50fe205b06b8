// Package config loads, normalizes, and validates voicejudge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// VOICEJUDGE_OUTPUT_DIR. The Config type centralizes every knob the experiment
// needs: where stimuli live, where logfiles go, presentation timing, the audio
// tools to shell out to, and the extraction failure policy.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
