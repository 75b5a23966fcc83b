package redaction

import (
	"strings"
	"testing"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "email",
			in:   "Contact me at john.doe@example.com for more info",
			want: "Contact me at [EMAIL REDACTED] for more info",
		},
		{
			name: "phone formats",
			in:   "Call me at 555-123-4567 or (555) 123-4567",
			want: "Call me at [PHONE REDACTED] or [PHONE REDACTED]",
		},
		{
			name: "local and international phone",
			in:   "Office 415-555-0123, desk 555-1234, intl +1 555 123 4567",
			want: "Office [PHONE REDACTED], desk [PHONE REDACTED], intl [PHONE REDACTED]",
		},
		{
			name: "linkedin with scheme",
			in:   "Profile: https://www.linkedin.com/in/johndoe",
			want: "Profile: [LINKEDIN REDACTED]",
		},
		{
			name: "bare linkedin",
			in:   "see linkedin.com/in/sarah-j for details",
			want: "see [LINKEDIN REDACTED] for details",
		},
		{
			name: "linkedin handle with non-ascii letters",
			in:   "Profil: linkedin.com/in/józef-nowak, Kraków",
			want: "Profil: [LINKEDIN REDACTED], Kraków",
		},
		{
			name: "linkedin with tracking query",
			in:   "See https://www.linkedin.com/in/jane-doe?trk=public_profile. Thanks",
			want: "See [LINKEDIN REDACTED]. Thanks",
		},
		{
			name: "generic urls",
			in:   "Website: https://johndoe.com and http://portfolio.com",
			want: "Website: [URL REDACTED] and [URL REDACTED]",
		},
		{
			name: "url keeps sentence punctuation",
			in:   "Portfolio at https://johndoe.dev/work.",
			want: "Portfolio at [URL REDACTED].",
		},
		{
			name: "mixed",
			in:   "Contact John at john@example.com or 555-1234. LinkedIn: linkedin.com/in/john",
			want: "Contact John at [EMAIL REDACTED] or [PHONE REDACTED]. LinkedIn: [LINKEDIN REDACTED]",
		},
		{
			name: "year ranges untouched",
			in:   "TechCorp Inc - Senior Software Engineer (2020-2024)\nStartupXYZ (2018-2020)",
			want: "TechCorp Inc - Senior Software Engineer (2020-2024)\nStartupXYZ (2018-2020)",
		},
		{
			name: "numeric ranges untouched",
			in:   "Scaled platform from 100-5000 users across 010-2000 nodes",
			want: "Scaled platform from 100-5000 users across 010-2000 nodes",
		},
		{
			name: "unicode and whitespace preserved",
			in:   "Zoë Müller 🚀\n\tmail: zoe@example.org\n\n  Köln",
			want: "Zoë Müller 🚀\n\tmail: [EMAIL REDACTED]\n\n  Köln",
		},
		{
			name: "no pii",
			in:   "Led development of microservices serving 1M+ users, cut latency by 40%.",
			want: "Led development of microservices serving 1M+ users, cut latency by 40%.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Redact(tt.in)
			if got != tt.want {
				t.Errorf("Redact(%q)\n got: %q\nwant: %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactLinkedInNeverTaggedAsURL(t *testing.T) {
	inputs := []string{
		"https://www.linkedin.com/in/johndoe",
		"http://linkedin.com/in/jane_doe/",
		"https://uk.linkedin.com/pub/someone",
		"LINKEDIN.COM/IN/SHOUTY",
	}
	for _, in := range inputs {
		got := Redact(in)
		if got != LinkedInToken && got != LinkedInToken+"/" {
			t.Errorf("Redact(%q) = %q, want %q", in, got, LinkedInToken)
		}
		if strings.Contains(got, URLToken) {
			t.Errorf("Redact(%q) double-tagged as URL: %q", in, got)
		}
	}
}

func TestRedactIsIdempotent(t *testing.T) {
	in := "Email john@example.com, phone (555) 123-4567, web https://example.com, linkedin.com/in/john"
	once := Redact(in)
	twice := Redact(once)
	if once != twice {
		t.Fatalf("redacting placeholders changed them:\n once: %q\ntwice: %q", once, twice)
	}
	for _, raw := range []string{"john@example.com", "123-4567", "https://example.com", "linkedin.com/in/john"} {
		if strings.Contains(once, raw) {
			t.Errorf("output still contains %q: %q", raw, once)
		}
	}
}

func TestRedactWithReport(t *testing.T) {
	_, report := RedactWithReport("a@b.io c@d.io 555-1234 https://x.io linkedin.com/in/x")
	want := map[Kind]int{KindEmail: 2, KindPhone: 1, KindURL: 1, KindLinkedIn: 1}
	for k, n := range want {
		if report[k] != n {
			t.Errorf("report[%s] = %d, want %d", k, report[k], n)
		}
	}
	if report.Total() != 5 {
		t.Errorf("Total() = %d, want 5", report.Total())
	}
}
