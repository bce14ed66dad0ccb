// internal/controller/group_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/unclebandit/campaign-manager-backend/internal/service"
)

type GroupController struct {
	RecipientService *service.RecipientService
}

func (c *GroupController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	group, err := c.RecipientService.CreateGroup(body.Name, body.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

func (c *GroupController) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := c.RecipientService.ListGroups()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (c *GroupController) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	group, err := c.RecipientService.UpdateGroup(id, body.Name, body.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

// AddRecipients bulk-adds recipients to a group by email. Opted-out
// recipients are skipped.
func (c *GroupController) AddRecipients(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var body struct {
		Emails recipientList `json:"emails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	added, err := c.RecipientService.AddRecipientsToGroup(id, body.Emails)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"group_id": id,
		"added":    added,
	})
}
