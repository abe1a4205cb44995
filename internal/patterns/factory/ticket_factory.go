package factory

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/patterns/strategy"
	"github.com/doujindesk/doujindesk-api/internal/qrpayload"
	"github.com/doujindesk/doujindesk-api/pkg/token"
	qrcode "github.com/skip2/go-qrcode"
)

// PurchaseIDPrefix prefixes every purchase id.
const PurchaseIDPrefix = "PUR"

// TicketFactory builds purchases together with their QR ticket token
type TicketFactory struct {
	qrGenerator QRCodeGenerator
	window      EventWindow
}

// EventWindow is the convention the tickets admit to. Every purchase is
// valid from Start to End inclusive.
type EventWindow struct {
	EventID string
	Start   time.Time
	End     time.Time
}

// QRCodeGenerator interface for generating QR codes
type QRCodeGenerator interface {
	Generate(data string) ([]byte, error)
	GenerateWithOptions(data string, size int, level qrcode.RecoveryLevel) ([]byte, error)
}

// DefaultQRCodeGenerator implements QRCodeGenerator
type DefaultQRCodeGenerator struct{}

func (g *DefaultQRCodeGenerator) Generate(data string) ([]byte, error) {
	return qrcode.Encode(data, qrcode.Medium, 256)
}

func (g *DefaultQRCodeGenerator) GenerateWithOptions(data string, size int, level qrcode.RecoveryLevel) ([]byte, error) {
	return qrcode.Encode(data, level, size)
}

// NewTicketFactory creates a new ticket factory
func NewTicketFactory(window EventWindow) *TicketFactory {
	return &TicketFactory{
		qrGenerator: &DefaultQRCodeGenerator{},
		window:      window,
	}
}

// NewTicketFactoryWithQRGenerator creates a factory with custom QR generator
func NewTicketFactoryWithQRGenerator(window EventWindow, qrGenerator QRCodeGenerator) *TicketFactory {
	return &TicketFactory{
		qrGenerator: qrGenerator,
		window:      window,
	}
}

// Window returns the event window tickets are issued for.
func (f *TicketFactory) Window() EventWindow {
	return f.window
}

// PurchaseCreationRequest holds parameters for purchase creation
type PurchaseCreationRequest struct {
	TicketType    *models.TicketType
	Quote         *strategy.PriceQuote
	AttendeeName  string
	AttendeeEmail string
	AttendeePhone string
	Currency      models.Currency
	PaymentMethod string
}

// CreatePurchase creates a pending purchase priced by req.Quote and carrying
// its QR token.
func (f *TicketFactory) CreatePurchase(req *PurchaseCreationRequest, now time.Time) (*models.TicketPurchase, error) {
	if req.TicketType == nil {
		return nil, models.ErrTicketTypeNotFound
	}
	if req.Quote == nil || req.Quote.Quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}

	id, err := token.GenerateID(PurchaseIDPrefix, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate purchase id: %w", err)
	}

	purchase := &models.TicketPurchase{
		BaseModel:      models.BaseModel{ID: id},
		TicketTypeID:   req.TicketType.ID,
		TicketTypeName: req.TicketType.Name,
		AttendeeName:   req.AttendeeName,
		AttendeeEmail:  strings.TrimSpace(req.AttendeeEmail),
		AttendeePhone:  req.AttendeePhone,
		Quantity:       req.Quote.Quantity,
		TotalPriceIDR:  req.Quote.PriceIDR,
		TotalPriceUSD:  req.Quote.PriceUSD,
		Currency:       req.Currency,
		Discount:       req.Quote.Discount,
		PaymentStatus:  models.PaymentStatusPending,
		PaymentMethod:  req.PaymentMethod,
		ValidFrom:      f.window.Start,
		ValidUntil:     f.window.End,
	}
	purchase.Initialize(now)

	qr, err := qrpayload.Encode(qrpayload.Payload{
		TicketID:      purchase.ID,
		EventID:       f.window.EventID,
		TicketType:    purchase.TicketTypeID,
		PurchaseDate:  now,
		ValidUntil:    purchase.ValidUntil,
		AttendeeName:  purchase.AttendeeName,
		AttendeeEmail: purchase.AttendeeEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build QR token: %w", err)
	}
	purchase.QRCode = qr

	return purchase, nil
}

// RenderQRCode renders the purchase's QR token as a PNG. VIP tickets get a
// larger, high recovery code for the express lane scanners.
func (f *TicketFactory) RenderQRCode(purchase *models.TicketPurchase, category models.TicketCategory) ([]byte, error) {
	var (
		image []byte
		err   error
	)
	if category == models.TicketCategoryVIP {
		image, err = f.qrGenerator.GenerateWithOptions(purchase.QRCode, 512, qrcode.High)
	} else {
		image, err = f.qrGenerator.Generate(purchase.QRCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return image, nil
}

// DataURL wraps a PNG in a data URL for inline display.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// TicketPrinter generates printable ticket data
type TicketPrinter struct {
	factory *TicketFactory
}

func NewTicketPrinter(factory *TicketFactory) *TicketPrinter {
	return &TicketPrinter{factory: factory}
}

// PrintableTicket represents printable ticket data
type PrintableTicket struct {
	PurchaseID   string `json:"purchase_id"`
	TicketType   string `json:"ticket_type"`
	AttendeeName string `json:"attendee_name"`
	Quantity     int    `json:"quantity"`
	ValidFrom    string `json:"valid_from"`
	ValidUntil   string `json:"valid_until"`
	Price        string `json:"price"`
	QRCode       string `json:"qr_code"`
	QRImage      string `json:"qr_image"`
}

// GeneratePrintableTicket converts a purchase to printable format
func (p *TicketPrinter) GeneratePrintableTicket(purchase *models.TicketPurchase, category models.TicketCategory) (*PrintableTicket, error) {
	image, err := p.factory.RenderQRCode(purchase, category)
	if err != nil {
		return nil, err
	}

	return &PrintableTicket{
		PurchaseID:   purchase.ID,
		TicketType:   purchase.TicketTypeName,
		AttendeeName: purchase.AttendeeName,
		Quantity:     purchase.Quantity,
		ValidFrom:    purchase.ValidFrom.Format("02 Jan 2006"),
		ValidUntil:   purchase.ValidUntil.Format("02 Jan 2006"),
		Price:        formatPrice(purchase),
		QRCode:       purchase.QRCode,
		QRImage:      DataURL(image),
	}, nil
}

func formatPrice(purchase *models.TicketPurchase) string {
	if purchase.Currency == models.CurrencyUSD {
		return "$" + purchase.TotalPriceUSD.StringFixed(2)
	}
	return "Rp " + purchase.TotalPriceIDR.StringFixed(0)
}
