package mail

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func rawMultipartMessage(t *testing.T) []byte {
	t.Helper()
	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake"))
	return []byte(strings.Join([]string{
		"From: Acme Orders <orders@acme.com>",
		"To: user@example.com",
		"Subject: Order confirmation 42",
		"Date: Mon, 02 Feb 2026 10:00:00 +0000",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>Thanks for your order.</p>",
		"--BOUNDARY",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Thanks for your order.",
		"--BOUNDARY",
		"Content-Type: application/pdf",
		`Content-Disposition: attachment; filename="order.pdf"`,
		"Content-Transfer-Encoding: base64",
		"",
		pdf,
		"--BOUNDARY--",
		"",
	}, "\r\n"))
}

func TestParseMessageMultipart(t *testing.T) {
	msg, err := parseMessage(rawMultipartMessage(t))
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if msg.Sender != "Acme Orders <orders@acme.com>" {
		t.Errorf("sender: got %q", msg.Sender)
	}
	if msg.Subject != "Order confirmation 42" {
		t.Errorf("subject: got %q", msg.Subject)
	}
	want := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	if !msg.Date.Equal(want) {
		t.Errorf("date: got %v, want %v", msg.Date, want)
	}
	// The HTML part comes first but the plain-text part wins.
	if strings.TrimSpace(msg.BodyText) != "Thanks for your order." {
		t.Errorf("body: got %q", msg.BodyText)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments: got %d, want 1", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Filename != "order.pdf" {
		t.Errorf("filename: got %q", att.Filename)
	}
	if string(att.Data) != "%PDF-1.4 fake" {
		t.Errorf("data: got %q", att.Data)
	}
}

func TestParseMessagePlainText(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"From: nobody@example.com",
		"Subject: hello",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"just text",
		"",
	}, "\r\n"))

	msg, err := parseMessage(raw)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if msg.Sender != "nobody@example.com" {
		t.Errorf("sender: got %q", msg.Sender)
	}
	if strings.TrimSpace(msg.BodyText) != "just text" {
		t.Errorf("body: got %q", msg.BodyText)
	}
	if len(msg.Attachments) != 0 {
		t.Errorf("attachments: got %d, want 0", len(msg.Attachments))
	}
}

func TestFormatAddress(t *testing.T) {
	if got := formatAddress("Acme", "x@acme.com"); got != "Acme <x@acme.com>" {
		t.Errorf("got %q", got)
	}
	if got := formatAddress("", "x@acme.com"); got != "x@acme.com" {
		t.Errorf("got %q", got)
	}
}
