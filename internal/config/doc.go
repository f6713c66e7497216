// Package config loads relmail settings from an optional CUE file, the
// environment (RELMAIL_* variables, optionally from a .env file) and
// command-line flags, in that order of precedence.
//
// Example config file:
//
//	configVersion: "1"
//	release: {dir: "app/build/outputs/apk/release", appName: "Demo"}
//	changelog: file: "CHANGELOG.md"
//	template: file: "email.txt"
//	mail: {to: "qa@example.com", user: "ci@example.com"}
//	distribution: {pollIntervalMs: 1000, pollTimeoutMs: 600000}
package config
