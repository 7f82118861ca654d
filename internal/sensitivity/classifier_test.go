package sensitivity

import (
	"strings"
	"testing"
)

func TestLevelOrdering(t *testing.T) {
	if !(None < Low && Low < High && High < Blocked) {
		t.Error("levels must be ordered none < low < high < blocked")
	}
}

func TestFromMetadataBlockedBundles(t *testing.T) {
	c := NewClassifier()
	bundles := []string{
		"com.1password.1password",
		"com.bitwarden.desktop",
		"com.apple.keychainaccess",
	}
	for _, b := range bundles {
		if got := c.FromMetadata(b, "Grocery List"); got != Blocked {
			t.Errorf("FromMetadata(%q) = %v, want Blocked", b, got)
		}
	}
}

func TestFromMetadataBlockedBundleOverridesTitle(t *testing.T) {
	c := NewClassifier()
	// Bundle priority wins regardless of an innocuous title.
	if got := c.FromMetadata("com.1password.1password", "Welcome"); got != Blocked {
		t.Errorf("got %v, want Blocked", got)
	}
	// And regardless of a title that would otherwise classify lower.
	if got := c.FromMetadata("com.bitwarden.desktop", "banking overview"); got != Blocked {
		t.Errorf("got %v, want Blocked", got)
	}
}

func TestFromMetadataMessagingBundles(t *testing.T) {
	c := NewClassifier()
	for _, b := range []string{"com.tinyspeck.slackmacgap", "com.hnc.Discord", "net.whatsapp.WhatsApp"} {
		if got := c.FromMetadata(b, "general"); got != High {
			t.Errorf("FromMetadata(%q) = %v, want High", b, got)
		}
	}
}

func TestFromMetadataTitleSeverity(t *testing.T) {
	c := NewClassifier()
	cases := []struct {
		title string
		want  Level
	}{
		{"Change Password - Settings", Blocked},
		{"Enter your verification code", Blocked},
		{"New Incognito Window", Blocked},
		{"Navigation privée", Blocked},
		{"Keychain Access", Blocked},
		{"Sign in to GitHub", High},
		{"Online Banking - Chase", High},
		{"Credit Card Offers", High},
		{"Anmelden | Portal", High},
		{"Weekly Planning Notes", None},
		{"", None},
	}
	for _, tc := range cases {
		if got := c.FromMetadata("com.apple.safari", tc.title); got != tc.want {
			t.Errorf("FromMetadata(title=%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}

func TestWithTextDetectors(t *testing.T) {
	c := NewClassifier()
	cases := []struct {
		name string
		text string
		want Level
	}{
		{"card number", "pay with 4111 1111 1111 1111 today", High},
		{"ssn", "SSN: 123-45-6789", High},
		{"iban", "transfer to DE89370400440532013000", High},
		{"password assignment", "password=hunter2", High},
		{"password colon", "Password: s3cret!", High},
		{"otp", "your code is 482913", High},
		{"plain text", "meeting notes for tuesday", None},
		{"empty", "", None},
	}
	for _, tc := range cases {
		if got := c.WithText("com.apple.TextEdit", "Untitled", tc.text); got != tc.want {
			t.Errorf("%s: WithText = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWithTextDoesNotDowngradeMetadata(t *testing.T) {
	c := NewClassifier()
	// Metadata verdict stands; text is only consulted when metadata is None.
	if got := c.WithText("com.1password.1password", "Vault", "hello"); got != Blocked {
		t.Errorf("got %v, want Blocked", got)
	}
	if got := c.WithText("com.tinyspeck.slackmacgap", "general", ""); got != High {
		t.Errorf("got %v, want High", got)
	}
}

func TestWithTextNeverBlocksFromTextAlone(t *testing.T) {
	c := NewClassifier()
	text := "password=topsecret card 4111 1111 1111 1111 code 123456"
	if got := c.WithText("com.apple.TextEdit", "Untitled", text); got != High {
		t.Errorf("got %v, want High (text detection is advisory)", got)
	}
}

func TestMaskText(t *testing.T) {
	c := NewClassifier()
	masked := c.MaskText("card 4111 1111 1111 1111 and password=hunter2, else fine")
	if strings.Contains(masked, "4111") {
		t.Errorf("card number survived masking: %q", masked)
	}
	if strings.Contains(masked, "hunter2") {
		t.Errorf("password survived masking: %q", masked)
	}
	if !strings.Contains(masked, RedactionToken) {
		t.Errorf("expected redaction token in %q", masked)
	}
	if !strings.Contains(masked, "else fine") {
		t.Errorf("benign text should survive: %q", masked)
	}
}

func TestMaskTextNoMatches(t *testing.T) {
	c := NewClassifier()
	in := "nothing sensitive here"
	if got := c.MaskText(in); got != in {
		t.Errorf("MaskText(%q) = %q, want unchanged", in, got)
	}
}
