package controllers

import (
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
)

// bind decodes the JSON body into dest. On failure the 400 has been written.
func bind(w http.ResponseWriter, r *request.Request, dest interface{}) bool {
	if err := r.ParseJSON(dest); err != nil {
		response.BadRequest(w, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func ok(w http.ResponseWriter, data interface{}) {
	response.Success(w, http.StatusOK, data, nil)
}

func created(w http.ResponseWriter, data interface{}) {
	response.Success(w, http.StatusCreated, data, nil)
}

// list answers a collection with its size in meta.
func list(w http.ResponseWriter, data interface{}, count int) {
	response.Success(w, http.StatusOK, data, map[string]int{"count": count})
}
