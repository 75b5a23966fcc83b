// Package redaction masks personal contact details in free-text CV content.
package redaction

import (
	"regexp"
	"strings"
)

// Placeholder tokens written in place of matched spans
const (
	LinkedInToken = "[LINKEDIN REDACTED]"
	EmailToken    = "[EMAIL REDACTED]"
	PhoneToken    = "[PHONE REDACTED]"
	URLToken      = "[URL REDACTED]"
)

// Kind names a category of personal data
type Kind string

const (
	KindLinkedIn Kind = "linkedin"
	KindEmail    Kind = "email"
	KindPhone    Kind = "phone"
	KindURL      Kind = "url"
)

type rule struct {
	kind  Kind
	re    *regexp.Regexp
	token string
	// keepTrailing leaves sentence punctuation after a match in place
	keepTrailing bool
}

// Order matters: LinkedIn URLs are also URLs, and must be tagged first.
var rules = []rule{
	{
		kind: KindLinkedIn,
		// handles may carry any letter; a tracking query string goes with them
		re: regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/(?:in|pub|profile)/[\p{L}\p{N}_%\-]+/?` +
			`(?:\?[^\s<>"'()\[\]{}]*)?`),
		token:        LinkedInToken,
		keepTrailing: true,
	},
	{
		kind:  KindEmail,
		re:    regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
		token: EmailToken,
	},
	{
		kind: KindPhone,
		// full numbers: 555-123-4567, (555) 123-4567, +1 555 123 4567; local: 555-1234.
		// Four-digit groups on both sides (2020-2023) never match, and a local
		// exchange never starts with 0 or 1 (100-5000 is a range).
		re: regexp.MustCompile(
			`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{3}\)[\s.\-]?|\b\d{3}[\s.\-])\d{3}[\s.\-]\d{4}\b` +
				`|\b[2-9]\d{2}-\d{4}\b`),
		token: PhoneToken,
	},
	{
		kind:         KindURL,
		re:           regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"'()\[\]{}]+`),
		token:        URLToken,
		keepTrailing: true,
	},
}

// Report counts the spans replaced per kind
type Report map[Kind]int

// Total is the number of spans replaced
func (r Report) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// Redact returns text with every recognized contact detail replaced by its
// placeholder token. Text that matches nothing is returned unchanged.
func Redact(text string) string {
	out, _ := RedactWithReport(text)
	return out
}

// RedactWithReport is Redact plus per-kind match counts
func RedactWithReport(text string) (string, Report) {
	report := Report{}
	if text == "" {
		return text, report
	}
	for _, r := range rules {
		text = r.apply(text, report)
	}
	return text, report
}

func (r rule) apply(text string, report Report) string {
	return r.re.ReplaceAllStringFunc(text, func(match string) string {
		suffix := ""
		if r.keepTrailing {
			trimmed := strings.TrimRight(match, ".,;:!?")
			suffix = match[len(trimmed):]
			if trimmed == "" {
				return match
			}
		}
		report[r.kind]++
		return r.token + suffix
	})
}
