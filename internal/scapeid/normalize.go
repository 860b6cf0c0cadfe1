// Package scapeid canonicalizes scape names and evaluation modes so callers
// can use loose aliases on the CLI and in config files.
package scapeid

import "strings"

// Normalize canonicalizes a scape name. Unknown names pass through in
// kebab-case form so the registry lookup reports them verbatim.
func Normalize(name string) string {
	normalized := kebab(name)
	if normalized == "" {
		return ""
	}
	if canonical, ok := canonicalScapeName(normalized); ok {
		return canonical
	}
	return normalized
}

// NormalizeMode canonicalizes an evaluation mode. Empty input stays empty,
// meaning the scape default.
func NormalizeMode(mode string) string {
	switch kebab(mode) {
	case "":
		return ""
	case "gt", "train", "training":
		return "gt"
	case "validation", "val", "validate":
		return "validation"
	case "test", "testing":
		return "test"
	default:
		return kebab(mode)
	}
}

func kebab(value string) string {
	normalized := strings.TrimSpace(strings.ToLower(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	return strings.Trim(normalized, "-")
}

func canonicalScapeName(alias string) (string, bool) {
	switch alias {
	case "signal-mimic", "cart-pole-lite":
		return alias, true
	}

	compact := strings.ReplaceAll(alias, "-", "")
	switch compact {
	case "signalmimic", "sinemimic", "mimic":
		return "signal-mimic", true
	case "cartpolelite", "cartpole", "cart":
		return "cart-pole-lite", true
	default:
		return "", false
	}
}
