// Package event defines activity events and their derived text
package event

import "strings"

// Window-title chrome appended by browsers and editors, stripped before
// building a summary. Checked in order, longest variants first.
var titleSuffixes = []string{
	" - Google Chrome",
	" — Mozilla Firefox",
	" - Mozilla Firefox",
	" - Microsoft Edge",
	" - Brave",
	" - Opera",
	" — Arc",
	" - Visual Studio Code",
	" — Edited",
	" - Edited",
	" - Audio playing",
}

// Summarize derives a one-line summary from the app name and window title:
// "{appName}: {cleanedTitle}", or "Using {appName}" when no usable title
// remains.
func Summarize(appName, windowTitle string) string {
	title := strings.TrimSpace(windowTitle)
	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(title, suffix) {
			title = strings.TrimSpace(strings.TrimSuffix(title, suffix))
			break
		}
	}
	if title == "" {
		return "Using " + appName
	}
	return appName + ": " + title
}
