package qrpayload

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() Payload {
	return Payload{
		TicketID:      "PUR-1760781600000-a1b2c3d4",
		EventID:       "doujindesk-2026",
		TicketType:    "vip-pass",
		PurchaseDate:  time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2026, time.November, 2, 23, 59, 59, 0, time.UTC),
		AttendeeName:  "Sakura",
		AttendeeEmail: "sakura@example.com",
	}
}

func TestEncodeDecode(t *testing.T) {
	token, err := Encode(samplePayload())
	require.NoError(t, err)

	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	decoded, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, samplePayload().TicketID, decoded.TicketID)
	assert.Equal(t, samplePayload().AttendeeEmail, decoded.AttendeeEmail)
	assert.True(t, samplePayload().ValidUntil.Equal(decoded.ValidUntil))
}

func TestEncodeIsDeterministic(t *testing.T) {
	p := samplePayload()
	local := p
	local.PurchaseDate = p.PurchaseDate.In(time.FixedZone("WIB", 7*3600))

	a, err := Encode(p)
	require.NoError(t, err)
	b, err := Encode(local)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDecodeMalformed(t *testing.T) {
	for _, token := range []string{"", "QR_FAKE", "!!!", "bm90LWpzb24"} {
		_, err := Decode(token)
		assert.ErrorIs(t, err, ErrMalformedPayload, "token %q", token)
	}
}

func TestValidate(t *testing.T) {
	token, err := Encode(samplePayload())
	require.NoError(t, err)

	assert.True(t, Validate(token, samplePayload().PurchaseDate))
	assert.False(t, Validate(token, samplePayload().ValidUntil))
	assert.False(t, Validate(token, samplePayload().ValidUntil.Add(time.Hour)))
	assert.False(t, Validate(strings.ToUpper(token), samplePayload().PurchaseDate))
}

func TestValidateRequiresIdentifiers(t *testing.T) {
	p := samplePayload()
	p.EventID = ""

	token, err := Encode(p)
	require.NoError(t, err)
	assert.False(t, Validate(token, p.PurchaseDate))
}
