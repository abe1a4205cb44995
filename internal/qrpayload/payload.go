// -----------------------------------------------------------------------------
// QR Ticket Payload
// -----------------------------------------------------------------------------
// The string printed inside a ticket's QR code. It is the base64url (no
// padding) encoding of a JSON document with a fixed field order, so the same
// payload always yields the same token. The token is also the key gate
// staff scan against, so a purchase's QRCode field holds exactly this value.
// -----------------------------------------------------------------------------

package qrpayload

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedPayload is returned when a token cannot be decoded.
var ErrMalformedPayload = errors.New("malformed QR payload")

// Payload is the data carried by a ticket QR code.
type Payload struct {
	TicketID      string    `json:"ticketId"`
	EventID       string    `json:"eventId"`
	TicketType    string    `json:"ticketType"`
	PurchaseDate  time.Time `json:"purchaseDate"`
	ValidUntil    time.Time `json:"validUntil"`
	AttendeeName  string    `json:"attendeeName"`
	AttendeeEmail string    `json:"attendeeEmail"`
}

// Encode serializes p into its token form. Times are normalized to UTC with
// second precision.
func Encode(p Payload) (string, error) {
	p.PurchaseDate = p.PurchaseDate.UTC().Truncate(time.Second)
	p.ValidUntil = p.ValidUntil.UTC().Truncate(time.Second)

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode QR payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a token produced by Encode.
func Decode(token string) (*Payload, error) {
	if token == "" {
		return nil, ErrMalformedPayload
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &p, nil
}

// Validate reports whether token decodes, names a ticket and an event, and
// has not expired at now.
func Validate(token string, now time.Time) bool {
	p, err := Decode(token)
	if err != nil {
		return false
	}
	if p.TicketID == "" || p.EventID == "" {
		return false
	}
	return p.ValidUntil.After(now)
}
