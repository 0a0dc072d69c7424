package parser

import (
	"strings"
	"testing"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

const multipartMessage = `From: Alice Lead <alice@example.com>
To: Me <me@example.com>
Subject: Re: Your proposal
Date: Mon, 06 Jan 2025 10:30:00 +0000
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary=BOUNDARY

--BOUNDARY
Content-Type: text/plain; charset=utf-8

Yes, I am interested. Let's talk next week.
--BOUNDARY
Content-Type: text/html; charset=utf-8

<html><body><p>Yes, I am <b>interested</b>. Let's talk next week.</p></body></html>
--BOUNDARY--
`

func TestDecodeMultipart(t *testing.T) {
	parsed, err := Decode([]byte(crlf(multipartMessage)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if parsed.Subject != "Re: Your proposal" {
		t.Errorf("subject = %q", parsed.Subject)
	}
	if parsed.From.Name != "Alice Lead" || parsed.From.Address != "alice@example.com" {
		t.Errorf("from = %+v", parsed.From)
	}
	if len(parsed.To) != 1 || parsed.To[0].Address != "me@example.com" {
		t.Errorf("to = %+v", parsed.To)
	}
	if parsed.Date.IsZero() {
		t.Error("date should be parsed")
	}
	if !strings.Contains(parsed.BodyText, "I am interested") {
		t.Errorf("body text = %q", parsed.BodyText)
	}
	if !strings.Contains(parsed.BodyHTML, "<b>interested</b>") {
		t.Errorf("body html = %q", parsed.BodyHTML)
	}
}

const htmlOnlyMessage = `From: promo@shop.example
To: me@example.com
Subject: Huge discounts inside
MIME-Version: 1.0
Content-Type: text/html; charset=utf-8

<html><body><h1>50% off</h1><p>Buy now!</p></body></html>
`

func TestDecodeHTMLOnly(t *testing.T) {
	parsed, err := Decode([]byte(crlf(htmlOnlyMessage)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if parsed.BodyText != "" {
		t.Errorf("expected empty text body, got %q", parsed.BodyText)
	}
	if !strings.Contains(parsed.BodyHTML, "<h1>50% off</h1>") {
		t.Errorf("body html = %q", parsed.BodyHTML)
	}
}

const bareMessage = `From: bob@example.com
To: me@example.com
MIME-Version: 1.0
Content-Type: text/plain; charset=utf-8

ping
`

func TestDecodeMissingHeaders(t *testing.T) {
	parsed, err := Decode([]byte(crlf(bareMessage)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if parsed.Subject != "" {
		t.Errorf("subject = %q, want empty", parsed.Subject)
	}
	if !parsed.Date.IsZero() {
		t.Errorf("date = %v, want zero", parsed.Date)
	}
	if strings.TrimSpace(parsed.BodyText) != "ping" {
		t.Errorf("body text = %q", parsed.BodyText)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a mail message")); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"paragraphs become lines",
			"<html><body><p>Hello</p><p>World</p></body></html>",
			"Hello\nWorld",
		},
		{
			"scripts and styles stripped",
			"<html><head><style>p{color:red}</style></head><body><script>alert(1)</script><p>Visible</p></body></html>",
			"Visible",
		},
		{
			"invisible characters removed",
			"<p>Zero\u200bwidth</p>",
			"Zerowidth",
		},
		{
			"whitespace collapsed",
			"<p>too   many    spaces</p>",
			"too many spaces",
		},
		{
			"empty input",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToText(tt.html); got != tt.want {
				t.Errorf("HTMLToText(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}
