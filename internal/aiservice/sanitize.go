package aiservice

import (
	"regexp"
	"strings"
)

// truncationMarker is appended whenever Sanitize has to cut input short.
const truncationMarker = "..."

// roleMarkerPattern matches chat role prefixes a caller could use to smuggle
// instructions into the prompt under a different speaker.
var roleMarkerPattern = regexp.MustCompile(`(?i)system:|assistant:|user:`)

// Sanitize strips prompt-injection vectors from caller-influenced text and
// bounds its length. It removes angle-bracket markup, chat role markers and
// code-fence delimiters, trims whitespace, and truncates to maxLength
// (appending a marker) when needed. maxLength <= 0 means no length cap.
//
// The result is a fixpoint: sanitizing an already-sanitized string returns
// it unchanged, and the output never exceeds maxLength.
func Sanitize(text string, maxLength int) string {
	s := text
	// Stripping one marker can splice surrounding characters into a new
	// one ("sysuser:tem:" -> "system:"), so strip until stable.
	for {
		next := stripInjectionTokens(s)
		if next == s {
			break
		}
		s = next
	}
	s = strings.TrimSpace(s)

	if maxLength <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= len(truncationMarker) {
		return string(runes[:maxLength])
	}
	cut := strings.TrimSpace(string(runes[:maxLength-len(truncationMarker)]))
	return cut + truncationMarker
}

func stripInjectionTokens(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = roleMarkerPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return s
}
