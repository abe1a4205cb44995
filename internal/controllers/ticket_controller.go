package controllers

import (
	"log"
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/services"
)

// TicketController handles pricing, checkout and purchase lookups.
type TicketController struct {
	tickets *services.TicketService
	logger  *log.Logger
}

func NewTicketController(tickets *services.TicketService, logger *log.Logger) *TicketController {
	return &TicketController{tickets: tickets, logger: logger}
}

// Quote handles POST /api/tickets/quote
func (c *TicketController) Quote(w http.ResponseWriter, r *request.Request) {
	var input services.QuoteInput
	if !bind(w, r, &input) {
		return
	}

	quote, err := c.tickets.Quote(r.Context(), &input)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, quote)
}

// Purchase handles POST /api/purchases
func (c *TicketController) Purchase(w http.ResponseWriter, r *request.Request) {
	// 1. Parse request
	var input services.PurchaseInput
	if !bind(w, r, &input) {
		return
	}

	// 2. Call service
	purchase, err := c.tickets.Purchase(r.Context(), &input)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	// 3. Return response
	created(w, purchase)
}

// Show handles GET /api/purchases/{id}
func (c *TicketController) Show(w http.ResponseWriter, r *request.Request) {
	purchase, err := c.tickets.GetPurchase(r.Context(), r.RouteParam("id"))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, purchase)
}

// ByEmail handles GET /api/purchases?email=
func (c *TicketController) ByEmail(w http.ResponseWriter, r *request.Request) {
	purchases, err := c.tickets.GetPurchasesByEmail(r.Context(), r.Query("email", ""))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	list(w, purchases, len(purchases))
}

// Printable handles GET /api/purchases/{id}/ticket
func (c *TicketController) Printable(w http.ResponseWriter, r *request.Request) {
	ticket, err := c.tickets.PrintableTicket(r.Context(), r.RouteParam("id"))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, ticket)
}

// QRImage handles GET /api/purchases/{id}/qr.png
func (c *TicketController) QRImage(w http.ResponseWriter, r *request.Request) {
	purchase, err := c.tickets.GetPurchase(r.Context(), r.RouteParam("id"))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}
	if !purchase.IsPaid() {
		response.FromError(w, models.ErrInvalidStateTransition, c.logger)
		return
	}

	png, err := c.tickets.RenderTicketQR(purchase)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ----- Back office -----

// List handles GET /api/admin/purchases
func (c *TicketController) List(w http.ResponseWriter, r *request.Request) {
	purchases := c.tickets.ListPurchases(r.Context())
	list(w, purchases, len(purchases))
}

// Confirm handles POST /api/admin/purchases/{id}/confirm
func (c *TicketController) Confirm(w http.ResponseWriter, r *request.Request) {
	var input struct {
		Reference string `json:"reference"`
	}
	if r.ContentLength > 0 && !bind(w, r, &input) {
		return
	}

	purchase, err := c.tickets.ConfirmPayment(r.Context(), r.RouteParam("id"), input.Reference)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, purchase)
}

// Fail handles POST /api/admin/purchases/{id}/fail
func (c *TicketController) Fail(w http.ResponseWriter, r *request.Request) {
	var input struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 && !bind(w, r, &input) {
		return
	}

	purchase, err := c.tickets.MarkFailed(r.Context(), r.RouteParam("id"), input.Reason)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, purchase)
}

// Refund handles POST /api/admin/purchases/{id}/refund
func (c *TicketController) Refund(w http.ResponseWriter, r *request.Request) {
	purchase, err := c.tickets.Refund(r.Context(), r.RouteParam("id"))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, purchase)
}
