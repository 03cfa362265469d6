// Package config loads, validates, and normalizes the keyframe TOML
// configuration. Secrets may be supplied through the environment (a .env
// file is honored) so deployments never need API keys on disk.
package config
