package controllers

import (
	"log"
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/services"
)

// GateController serves the scanners at the venue gates.
type GateController struct {
	tickets *services.TicketService
	logger  *log.Logger
}

func NewGateController(tickets *services.TicketService, logger *log.Logger) *GateController {
	return &GateController{tickets: tickets, logger: logger}
}

type scanRequest struct {
	QRCode         string                `json:"qr_code"`
	GateID         string                `json:"gate_id"`
	ValidationType models.ValidationType `json:"validation_type"`
}

// Validate handles POST /api/gate/validate. A rejected scan is still a
// recorded scan and answers 200 with is_valid=false.
func (c *GateController) Validate(w http.ResponseWriter, r *request.Request) {
	// 1. Parse request
	claims, err := r.Staff()
	if err != nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var scan scanRequest
	if !bind(w, r, &scan) {
		return
	}

	// scanners assigned to a gate may omit it
	gateID := scan.GateID
	if gateID == "" {
		gateID = claims.Gate
	}

	// 2. Call service
	validation, err := c.tickets.ValidateTicket(r.Context(), &services.ValidateInput{
		QRCode:         scan.QRCode,
		GateID:         gateID,
		StaffID:        claims.StaffID,
		ValidationType: scan.ValidationType,
	})
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	// 3. Return response
	ok(w, validation)
}

// Validations handles GET /api/gate/validations?ticket_id=
func (c *GateController) Validations(w http.ResponseWriter, r *request.Request) {
	validations := c.tickets.ListValidations(r.Context(), r.Query("ticket_id", ""))
	list(w, validations, len(validations))
}
