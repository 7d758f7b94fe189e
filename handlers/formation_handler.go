package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Bekarys01/unisport-system/middleware"
	"github.com/Bekarys01/unisport-system/services"
	"github.com/go-chi/chi/v5"
)

// FormationHandler exposes the team-formation workflow: invites, accepts,
// rejects, commits, and the organizer-side removals.
type FormationHandler struct {
	formationService services.FormationService
}

func NewFormationHandler(formationService services.FormationService) *FormationHandler {
	return &FormationHandler{formationService: formationService}
}

func (h *FormationHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		InviteeID int `json:"invitee_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.InviteeID <= 0 {
		badRequestResponse(w, r, errors.New("invitee_id is required"))
		return
	}

	invite, err := h.formationService.CreateInvite(r.Context(), eventID, currentUserID, input.InviteeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"invite": invite}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormationHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	inviteID, err := getIDFromURL(r, "inviteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	invite, err := h.formationService.AcceptInvite(r.Context(), eventID, inviteID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invite": invite}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormationHandler) RejectInvite(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	inviteID, err := getIDFromURL(r, "inviteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.formationService.RejectInvite(r.Context(), eventID, inviteID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FormationHandler) ListMyInvites(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	invites, err := h.formationService.ListLeaderInvites(r.Context(), eventID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invites": invites}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormationHandler) CommitTeam(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.formationService.CommitTeam(r.Context(), eventID, currentUserID, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormationHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.formationService.ListEventTeams(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	memberID, err := getIDFromURL(r, "memberID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.formationService.RemoveMember(r.Context(), eventID, currentUserID, memberID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FormationHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teamName, err := url.PathUnescape(chi.URLParam(r, "teamName"))
	if err != nil || teamName == "" {
		badRequestResponse(w, r, errors.New("missing team name in URL path"))
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.formationService.DeleteTeam(r.Context(), eventID, currentUserID, teamName); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
