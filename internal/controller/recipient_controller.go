// internal/controller/recipient_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/unclebandit/campaign-manager-backend/internal/service"
)

type RecipientController struct {
	RecipientService *service.RecipientService
}

func (c *RecipientController) CreateRecipient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string  `json:"email"`
		Name  *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	rec, err := c.RecipientService.GetOrCreate(body.Email, body.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (c *RecipientController) ListRecipients(w http.ResponseWriter, r *http.Request) {
	includeOptedOut := r.URL.Query().Get("include_opted_out") == "true"

	recipients, err := c.RecipientService.ListRecipients(includeOptedOut)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recipients)
}

func (c *RecipientController) UpdateRecipient(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid recipient id", http.StatusBadRequest)
		return
	}

	var body struct {
		Name    *string `json:"name"`
		GroupID *int    `json:"group_id"`
		OptOut  *bool   `json:"opt_out"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	rec, err := c.RecipientService.UpdateRecipient(id, body.Name, body.GroupID, body.OptOut)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (c *RecipientController) OptOut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email  string  `json:"email"`
		Reason *string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	rec, err := c.RecipientService.OptOut(body.Email, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (c *RecipientController) OptIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	rec, err := c.RecipientService.OptIn(body.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
