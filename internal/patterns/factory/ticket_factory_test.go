package factory

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/patterns/strategy"
	"github.com/doujindesk/doujindesk-api/internal/qrpayload"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQRGenerator struct {
	sizes []int
	fail  bool
}

func (g *recordingQRGenerator) Generate(data string) ([]byte, error) {
	return g.GenerateWithOptions(data, 256, qrcode.Medium)
}

func (g *recordingQRGenerator) GenerateWithOptions(data string, size int, level qrcode.RecoveryLevel) ([]byte, error) {
	if g.fail {
		return nil, errors.New("encoder down")
	}
	g.sizes = append(g.sizes, size)
	return []byte("png:" + data), nil
}

var window = EventWindow{
	EventID: "doujindesk-2026",
	Start:   time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC),
	End:     time.Date(2026, time.November, 2, 23, 59, 59, 0, time.UTC),
}

func request() *PurchaseCreationRequest {
	tt := &models.TicketType{
		BaseModel: models.BaseModel{ID: "weekend-pass"},
		Name:      "Weekend Pass",
		PriceIDR:  decimal.NewFromInt(150000),
		PriceUSD:  decimal.RequireFromString("10"),
		Category:  models.TicketCategoryWeekend,
	}
	return &PurchaseCreationRequest{
		TicketType: tt,
		Quote: &strategy.PriceQuote{
			TicketTypeID: tt.ID,
			Quantity:     2,
			PriceIDR:     decimal.NewFromInt(300000),
			PriceUSD:     decimal.RequireFromString("20"),
		},
		AttendeeName:  "Hana",
		AttendeeEmail: " hana@example.com ",
		Currency:      models.CurrencyIDR,
		PaymentMethod: "qris",
	}
}

func TestCreatePurchase(t *testing.T) {
	now := time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)
	f := NewTicketFactoryWithQRGenerator(window, &recordingQRGenerator{})

	purchase, err := f.CreatePurchase(request(), now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(purchase.ID, "PUR-"))
	assert.Equal(t, models.PaymentStatusPending, purchase.PaymentStatus)
	assert.Equal(t, "hana@example.com", purchase.AttendeeEmail)
	assert.Equal(t, 2, purchase.Quantity)
	assert.True(t, decimal.NewFromInt(300000).Equal(purchase.TotalPriceIDR))
	assert.Equal(t, window.Start, purchase.ValidFrom)
	assert.Equal(t, window.End, purchase.ValidUntil)
	assert.False(t, purchase.IsUsed)

	payload, err := qrpayload.Decode(purchase.QRCode)
	require.NoError(t, err)
	assert.Equal(t, purchase.ID, payload.TicketID)
	assert.Equal(t, window.EventID, payload.EventID)
	assert.Equal(t, "weekend-pass", payload.TicketType)
	assert.True(t, qrpayload.Validate(purchase.QRCode, now))
}

func TestCreatePurchase_UniqueTokens(t *testing.T) {
	now := time.Now()
	f := NewTicketFactory(window)

	a, err := f.CreatePurchase(request(), now)
	require.NoError(t, err)
	b, err := f.CreatePurchase(request(), now)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.QRCode, b.QRCode)
}

func TestCreatePurchase_Errors(t *testing.T) {
	f := NewTicketFactory(window)

	req := request()
	req.TicketType = nil
	_, err := f.CreatePurchase(req, time.Now())
	assert.ErrorIs(t, err, models.ErrTicketTypeNotFound)

	req = request()
	req.Quote = nil
	_, err = f.CreatePurchase(req, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
}

func TestRenderQRCode(t *testing.T) {
	gen := &recordingQRGenerator{}
	f := NewTicketFactoryWithQRGenerator(window, gen)
	purchase, err := f.CreatePurchase(request(), time.Now())
	require.NoError(t, err)

	_, err = f.RenderQRCode(purchase, models.TicketCategoryWeekend)
	require.NoError(t, err)
	_, err = f.RenderQRCode(purchase, models.TicketCategoryVIP)
	require.NoError(t, err)

	assert.Equal(t, []int{256, 512}, gen.sizes)

	gen.fail = true
	_, err = f.RenderQRCode(purchase, models.TicketCategoryWeekend)
	assert.Error(t, err)
}

func TestDefaultQRCodeGenerator(t *testing.T) {
	png, err := (&DefaultQRCodeGenerator{}).Generate("PUR-1-abcdef01")
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
	assert.True(t, strings.HasPrefix(DataURL(png), "data:image/png;base64,iVBOR"))
}

func TestGeneratePrintableTicket(t *testing.T) {
	f := NewTicketFactoryWithQRGenerator(window, &recordingQRGenerator{})
	purchase, err := f.CreatePurchase(request(), time.Now())
	require.NoError(t, err)

	printable, err := NewTicketPrinter(f).GeneratePrintableTicket(purchase, models.TicketCategoryWeekend)
	require.NoError(t, err)

	assert.Equal(t, "Rp 300000", printable.Price)
	assert.Equal(t, "01 Nov 2026", printable.ValidFrom)
	assert.Equal(t, purchase.QRCode, printable.QRCode)
	assert.True(t, strings.HasPrefix(printable.QRImage, "data:image/png;base64,"))
}
