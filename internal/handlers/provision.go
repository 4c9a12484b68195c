package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"gadgetsite/internal/provision"
)

// Provisioner creates admin principals, see *provision.Provisioner.
type Provisioner interface {
	Run(ctx context.Context, accounts []provision.Account) []provision.Result
}

// Provision serves POST /internal/provision-admins. Authorization is
// checked by middleware.RequireServiceKey before this handler runs.
type Provision struct {
	provisioner Provisioner
}

// NewProvision creates the provisioning handler.
func NewProvision(p Provisioner) *Provision {
	return &Provision{provisioner: p}
}

type provisionRequest struct {
	Accounts []provision.Account `json:"accounts"`
}

type provisionResponse struct {
	Results []provision.Result `json:"results"`
}

// ServeHTTP runs the batch and reports one result per account. An empty
// body uses the configured default accounts.
func (h *Provision) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	results := h.provisioner.Run(r.Context(), req.Accounts)
	if results == nil {
		results = []provision.Result{}
	}
	writeJSON(w, http.StatusOK, provisionResponse{Results: results})
}
