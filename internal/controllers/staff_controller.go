package controllers

import (
	"log"
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/services"
)

// StaffController handles crew sessions and the roster.
type StaffController struct {
	staff  *services.StaffService
	logger *log.Logger
}

func NewStaffController(staff *services.StaffService, logger *log.Logger) *StaffController {
	return &StaffController{staff: staff, logger: logger}
}

// Login handles POST /api/staff/login
func (c *StaffController) Login(w http.ResponseWriter, r *request.Request) {
	var input services.LoginInput
	if !bind(w, r, &input) {
		return
	}

	result, err := c.staff.Login(r.Context(), &input)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, result)
}

// Me handles GET /api/staff/me
func (c *StaffController) Me(w http.ResponseWriter, r *request.Request) {
	claims, err := r.Staff()
	if err != nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	member, err := c.staff.FindByID(r.Context(), claims.StaffID)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, member)
}

// Register handles POST /api/admin/staff
func (c *StaffController) Register(w http.ResponseWriter, r *request.Request) {
	var input services.RegisterStaffInput
	if !bind(w, r, &input) {
		return
	}

	member, err := c.staff.Register(r.Context(), &input)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	created(w, member)
}

// Index handles GET /api/admin/staff
func (c *StaffController) Index(w http.ResponseWriter, r *request.Request) {
	roster := c.staff.List(r.Context())
	list(w, roster, len(roster))
}

// SetActive handles PATCH /api/admin/staff/{id}/active
func (c *StaffController) SetActive(w http.ResponseWriter, r *request.Request) {
	var input struct {
		Active *bool `json:"active"`
	}
	if !bind(w, r, &input) {
		return
	}
	if input.Active == nil {
		response.ValidationError(w, map[string][]string{"active": {"is required"}})
		return
	}

	member, err := c.staff.SetActive(r.Context(), r.RouteParam("id"), *input.Active)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, member)
}
