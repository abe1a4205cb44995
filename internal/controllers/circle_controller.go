package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/services"
)

// multipartOverhead is the slack allowed above the sample size for form
// boundaries and headers.
const multipartOverhead = 1 << 20

// CircleController handles booth applications.
type CircleController struct {
	circles *services.CircleService
	logger  *log.Logger
}

func NewCircleController(circles *services.CircleService, logger *log.Logger) *CircleController {
	return &CircleController{circles: circles, logger: logger}
}

// Submit handles POST /api/circles
func (c *CircleController) Submit(w http.ResponseWriter, r *request.Request) {
	var input services.SubmitCircleInput
	if !bind(w, r, &input) {
		return
	}

	circle, err := c.circles.Submit(r.Context(), &input)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	created(w, circle)
}

// UploadSample handles POST /api/circles/{id}/sample (multipart, field "file")
func (c *CircleController) UploadSample(w http.ResponseWriter, r *request.Request) {
	// 1. Parse request
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxSampleSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ValidationError(w, map[string][]string{"file": {"must be at most 10MB"}})
			return
		}
		response.ValidationError(w, map[string][]string{"file": {"is required"}})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxSampleSize+1))
	if err != nil {
		response.BadRequest(w, "Failed to read upload")
		return
	}

	// 2. Call service
	circle, err := c.circles.UploadSample(r.Context(), r.RouteParam("id"), header.Filename, data)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	// 3. Return response
	ok(w, circle)
}

// Index handles GET /api/admin/circles?status=
func (c *CircleController) Index(w http.ResponseWriter, r *request.Request) {
	circles, err := c.circles.List(r.Context(), models.CircleStatus(r.Query("status", "")))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	list(w, circles, len(circles))
}

// Show handles GET /api/admin/circles/{id}
func (c *CircleController) Show(w http.ResponseWriter, r *request.Request) {
	circle, err := c.circles.FindByID(r.Context(), r.RouteParam("id"))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, circle)
}

// Review handles POST /api/admin/circles/{id}/review
func (c *CircleController) Review(w http.ResponseWriter, r *request.Request) {
	var input services.ReviewCircleInput
	if !bind(w, r, &input) {
		return
	}

	circle, err := c.circles.Review(r.Context(), r.RouteParam("id"), &input)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, circle)
}
