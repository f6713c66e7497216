package config

import (
	"slices"
	"strings"
)

// CurrentConfigVersion is written by `relmail` examples and assumed when a
// config comes only from flags and environment.
const CurrentConfigVersion = "1"

// SupportedConfigVersions lists every configVersion LoadFile accepts.
var SupportedConfigVersions = []string{CurrentConfigVersion}

// IsSupportedConfigVersion reports whether v can be loaded.
func IsSupportedConfigVersion(v string) bool {
	return slices.Contains(SupportedConfigVersions, v)
}

// SupportedConfigVersionsCSV is used in error messages.
func SupportedConfigVersionsCSV() string {
	return strings.Join(SupportedConfigVersions, ", ")
}
