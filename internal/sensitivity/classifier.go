// Package sensitivity classifies screen content for privacy filtering
package sensitivity

import "strings"

// RedactionToken replaces detector matches in retained text.
const RedactionToken = "[REDACTED]"

// Classifier maps application identity, window titles, and extracted text
// to a sensitivity level. It is stateless; all methods are pure and safe
// for concurrent use.
type Classifier struct{}

// NewClassifier creates a classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// FromMetadata classifies by app identity and window title alone.
// Priority order, first match wins: blocked bundle set, messaging bundle
// set, title keyword rules (each rule carries its own severity), then None.
func (c *Classifier) FromMetadata(bundleID, windowTitle string) Level {
	bundle := strings.ToLower(bundleID)
	if _, ok := blockedBundles[bundle]; ok {
		return Blocked
	}
	if _, ok := messagingBundles[bundle]; ok {
		return High
	}

	title := strings.ToLower(windowTitle)
	for _, rule := range titleRules {
		if strings.Contains(title, rule.substr) {
			return rule.level
		}
	}
	return None
}

// WithText classifies with optional extracted screen text. The text
// detectors are consulted only when metadata classification yields None,
// and escalate to High at most.
func (c *Classifier) WithText(bundleID, windowTitle, text string) Level {
	if level := c.FromMetadata(bundleID, windowTitle); level != None {
		return level
	}
	if text == "" {
		return None
	}
	for _, d := range textDetectors {
		if d.re.MatchString(text) {
			return High
		}
	}
	return None
}

// MaskText replaces every detector match with the redaction token. Use
// whenever text that may carry sensitive patterns is retained downstream.
func (c *Classifier) MaskText(text string) string {
	if text == "" {
		return text
	}
	for _, d := range textDetectors {
		text = d.re.ReplaceAllString(text, RedactionToken)
	}
	return text
}
