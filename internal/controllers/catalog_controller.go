package controllers

import (
	"log"
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/services"
)

// CatalogController exposes the ticket type catalog.
type CatalogController struct {
	tickets *services.TicketService
	logger  *log.Logger
}

func NewCatalogController(tickets *services.TicketService, logger *log.Logger) *CatalogController {
	return &CatalogController{tickets: tickets, logger: logger}
}

// Index handles GET /api/ticket-types (on sale only)
func (c *CatalogController) Index(w http.ResponseWriter, r *request.Request) {
	types := c.tickets.ListTicketTypes(r.Context(), true)
	list(w, types, len(types))
}

// All handles GET /api/admin/ticket-types
func (c *CatalogController) All(w http.ResponseWriter, r *request.Request) {
	types := c.tickets.ListTicketTypes(r.Context(), !r.QueryBool("include_inactive", true))
	list(w, types, len(types))
}

// Show handles GET /api/ticket-types/{id}
func (c *CatalogController) Show(w http.ResponseWriter, r *request.Request) {
	ticketType, err := c.tickets.GetTicketType(r.Context(), r.RouteParam("id"))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, ticketType)
}

// Create handles POST /api/admin/ticket-types
func (c *CatalogController) Create(w http.ResponseWriter, r *request.Request) {
	var input services.TicketTypeInput
	if !bind(w, r, &input) {
		return
	}

	ticketType, err := c.tickets.CreateTicketType(r.Context(), &input)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	created(w, ticketType)
}

// Update handles PATCH /api/admin/ticket-types/{id}
func (c *CatalogController) Update(w http.ResponseWriter, r *request.Request) {
	var patch models.TicketTypePatch
	if !bind(w, r, &patch) {
		return
	}

	ticketType, err := c.tickets.UpdateTicketType(r.Context(), r.RouteParam("id"), &patch)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, ticketType)
}

// Delete handles DELETE /api/admin/ticket-types/{id}
func (c *CatalogController) Delete(w http.ResponseWriter, r *request.Request) {
	id := r.RouteParam("id")
	if err := c.tickets.DeleteTicketType(r.Context(), id); err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, map[string]string{"deleted": id})
}
