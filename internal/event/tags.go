// Package event defines activity events and their derived text
package event

import "strings"

// tagRule maps a lower-cased substring to a tag. Rules are evaluated top
// to bottom and every match contributes, so tagging stays reproducible.
type tagRule struct {
	substr string
	tag    string
}

var bundleTagRules = []tagRule{
	{"chrome", "browsing"},
	{"safari", "browsing"},
	{"firefox", "browsing"},
	{"thebrowser", "browsing"},
	{"brave", "browsing"},
	{"terminal", "terminal"},
	{"iterm", "terminal"},
	{"warp", "terminal"},
	{"vscode", "coding"},
	{"vscodium", "coding"},
	{"xcode", "coding"},
	{"jetbrains", "coding"},
	{"sublimetext", "coding"},
	{"neovide", "coding"},
	{"mail", "email"},
	{"outlook", "email"},
	{"slack", "communication"},
	{"discord", "communication"},
	{"telegram", "communication"},
	{"whatsapp", "communication"},
	{"mobilesms", "communication"},
	{"zoom", "communication"},
	{"teams", "communication"},
	{"finder", "files"},
	{"pathfinder", "files"},
	{"notes", "writing"},
	{"obsidian", "writing"},
	{"word", "writing"},
	{"pages", "writing"},
	{"notion", "writing"},
	{"figma", "design"},
	{"sketch", "design"},
	{"photoshop", "design"},
	{"affinity", "design"},
	{"systempreferences", "settings"},
	{"systemsettings", "settings"},
}

var titleTagRules = []tagRule{
	{"error", "error"},
	{"exception", "error"},
	{"failed", "error"},
	{"stack trace", "error"},
	{"settings", "settings"},
	{"preferences", "settings"},
	{"search", "search"},
	{"pull request", "coding"},
	{"merge request", "coding"},
}

// DeriveTags produces a deterministic tag set from the bundle id and window
// title, defaulting to {"general"} when nothing matches.
func DeriveTags(bundleID, windowTitle string) []string {
	bundle := strings.ToLower(bundleID)
	title := strings.ToLower(windowTitle)

	var tags []string
	seen := make(map[string]struct{})
	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, rule := range bundleTagRules {
		if strings.Contains(bundle, rule.substr) {
			add(rule.tag)
		}
	}
	for _, rule := range titleTagRules {
		if strings.Contains(title, rule.substr) {
			add(rule.tag)
		}
	}

	if len(tags) == 0 {
		return []string{"general"}
	}
	return tags
}
