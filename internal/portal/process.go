package portal

import (
	"regexp"
	"strings"
)

// processNumberPattern matches NNNN.NN.NNNNNNN/NNNN-NN with loose spacing
// and any of the dash variants the portal renders.
var processNumberPattern = regexp.MustCompile(`\b\d{4}\.\s*\d{2}\.\s*\d{7}\s*/\s*\d{4}\s*[-\x{2010}\x{2013}\x{2014}]\s*\d{2}\b`)

var (
	dotSpacePattern   = regexp.MustCompile(`\.\s+`)
	slashSpacePattern = regexp.MustCompile(`\s*/\s*`)
	dashSpacePattern  = regexp.MustCompile(`\s*-\s*`)
	dashVariants      = strings.NewReplacer("\u2010", "-", "\u2013", "-", "\u2014", "-")
)

// FindProcessNumber returns the first process number in s, canonicalized.
func FindProcessNumber(s string) (string, bool) {
	m := processNumberPattern.FindString(strings.ReplaceAll(s, "\u00a0", " "))
	if m == "" {
		return "", false
	}
	return CanonicalizeProcessNumber(m), true
}

// CanonicalizeProcessNumber removes the spacing the portal inserts in
// process numbers and normalizes dashes. It is idempotent.
func CanonicalizeProcessNumber(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = dashVariants.Replace(s)
	s = dotSpacePattern.ReplaceAllString(s, ".")
	s = slashSpacePattern.ReplaceAllString(s, "/")
	s = dashSpacePattern.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}
