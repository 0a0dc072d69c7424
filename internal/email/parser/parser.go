package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"onebox-backend/internal/email/domain"
)

// ParsedMail is the structured form of one raw RFC 822 payload.
type ParsedMail struct {
	Subject  string
	From     domain.Address
	To       []domain.Address
	Date     time.Time
	BodyText string
	BodyHTML string
}

// Decode parses a raw message into its headers, addresses and bodies.
// It keeps the first text/plain and first text/html inline parts it
// encounters and ignores attachments. Pure function, no I/O.
func Decode(raw []byte) (*ParsedMail, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	parsed := &ParsedMail{}
	header := mr.Header

	if subject, err := header.Subject(); err == nil {
		parsed.Subject = subject
	}
	if date, err := header.Date(); err == nil {
		parsed.Date = date
	}
	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		parsed.From = domain.Address{Name: from[0].Name, Address: from[0].Address}
	}
	if to, err := header.AddressList("To"); err == nil {
		for _, addr := range to {
			parsed.To = append(parsed.To, domain.Address{Name: addr.Name, Address: addr.Address})
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken part does not invalidate what was already decoded.
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && parsed.BodyText == "":
			parsed.BodyText = string(body)
		case strings.HasPrefix(contentType, "text/html") && parsed.BodyHTML == "":
			parsed.BodyHTML = string(body)
		}
	}

	return parsed, nil
}
