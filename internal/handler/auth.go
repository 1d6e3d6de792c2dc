package handler

import (
	"net/http"

	"github.com/atlas-forum/atlas/internal/api"
	"github.com/atlas-forum/atlas/internal/utils"
)

// Login sets the access token cookie and also returns the token for non-browser clients.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &creds); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	token, err := h.svc.Auth.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.cookies.SetAccessCookie(w, token, h.cfg.JwtTTL())
	utils.WriteJSON(w, http.StatusOK, api.LoginResponse{Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearAccessCookie(w)
	w.WriteHeader(http.StatusOK)
}
