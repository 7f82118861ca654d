// Package sensitivity classifies screen content for privacy filtering
package sensitivity

import "regexp"

// Bundle identifiers that must never have content recorded.
var blockedBundles = map[string]struct{}{
	"com.1password.1password":         {},
	"com.agilebits.onepassword7":      {},
	"com.agilebits.onepassword":       {},
	"com.apple.keychainaccess":        {},
	"com.apple.passwords":             {},
	"com.bitwarden.desktop":           {},
	"com.lastpass.lastpass":           {},
	"com.dashlane.dashlanephonefinal": {},
	"org.keepassxc.keepassxc":         {},
}

// Bundle identifiers for chat and communication apps; conversations are
// recorded only at the high-sensitivity level.
var messagingBundles = map[string]struct{}{
	"com.apple.mobilesms":              {},
	"com.apple.mail":                   {},
	"com.tinyspeck.slackmacgap":        {},
	"com.hnc.discord":                  {},
	"ru.keepcoder.telegram":            {},
	"net.whatsapp.whatsapp":            {},
	"org.whispersystems.signal-desktop": {},
	"com.facebook.archon":              {},
	"com.microsoft.teams2":             {},
	"us.zoom.xos":                      {},
}

// titleRule matches a lower-cased window-title substring and carries its
// severity explicitly. Rules are evaluated top to bottom, first match wins,
// so the blocked family sits above the high family.
type titleRule struct {
	substr string
	level  Level
}

var titleRules = []titleRule{
	// Blocked family: passwords, one-time codes, card numbers, private
	// browsing, keychains. Multi-locale synonyms included.
	{"password", Blocked},
	{"passwort", Blocked},
	{"contraseña", Blocked},
	{"mot de passe", Blocked},
	{"пароль", Blocked},
	{"one-time code", Blocked},
	{"verification code", Blocked},
	{"2fa", Blocked},
	{"two-factor", Blocked},
	{"card number", Blocked},
	{"kartennummer", Blocked},
	{"numéro de carte", Blocked},
	{"incognito", Blocked},
	{"private browsing", Blocked},
	{"inprivate", Blocked},
	{"navigation privée", Blocked},
	{"inkognito", Blocked},
	{"keychain", Blocked},
	{"trousseau", Blocked},

	// High family: credentials-adjacent and financial contexts.
	{"login", High},
	{"log in", High},
	{"sign in", High},
	{"anmelden", High},
	{"connexion", High},
	{"iniciar sesión", High},
	{"credit card", High},
	{"kreditkarte", High},
	{"tarjeta de crédito", High},
	{"banking", High},
	{"bank account", High},
	{"wire transfer", High},
}

// detector is a named regular expression over extracted screen text. Text
// matches escalate to High only; text detection is advisory, never a hard
// block.
type detector struct {
	name string
	re   *regexp.Regexp
}

var textDetectors = []detector{
	{"card_number", regexp.MustCompile(`\b(?:\d[ -]?){12}\d{1,4}\b`)},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"national_id", regexp.MustCompile(`\b[A-Z]{1,2}\d{6,8}[A-Z]?\b`)},
	{"bank_account", regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{10,30}\b`)},
	{"password_assignment", regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`)},
	{"otp_code", regexp.MustCompile(`\b\d{6}\b`)},
}
