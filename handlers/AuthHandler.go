package handlers

import (
	"net/http"

	"TaskWheelService/commands"
	"TaskWheelService/models"
	"TaskWheelService/response"
	"TaskWheelService/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// AuthHandler exposes registration, login and the current user.
type AuthHandler struct {
	auth *services.AuthService
	log  logrus.FieldLogger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Routes mounts the auth endpoints on r. GET /me sits behind RequireAuth.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(RequireAuth(h.auth, h.log)).Get("/me", h.Me)
}

type authData struct {
	Token string       `json:"token,omitempty"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register.
//
// Example request body:
//
//	{
//	  "fullName": "Ada Lovelace",
//	  "email": "ada@example.com",
//	  "password": "analytical"
//	}
func (h *AuthHandler) Register(res http.ResponseWriter, req *http.Request) {
	var cmd commands.RegisterCommand
	if err := decodeJSON(res, req, &cmd); err != nil {
		writeError(res, req, h.log, "register user", err)
		return
	}
	user, token, err := h.auth.Register(req.Context(), cmd)
	if err != nil {
		writeError(res, req, h.log, "register user", err)
		return
	}
	_ = response.Write(res, http.StatusCreated, response.OK("User registered successfully", authData{Token: token, User: user}))
}

// Login handles POST /api/auth/login and answers with a bearer token.
func (h *AuthHandler) Login(res http.ResponseWriter, req *http.Request) {
	var cmd commands.LoginCommand
	if err := decodeJSON(res, req, &cmd); err != nil {
		writeError(res, req, h.log, "logging in user", err)
		return
	}
	user, token, err := h.auth.Login(req.Context(), cmd)
	if err != nil {
		writeError(res, req, h.log, "logging in user", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"task operation": "logging in user",
		"request":        "POST /api/auth/login",
		"user":           user.ID,
	}).Info("user logged in")
	_ = response.Write(res, http.StatusOK, response.OK("Login successful", authData{Token: token, User: user}))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(res http.ResponseWriter, req *http.Request) {
	owner, _ := OwnerFromContext(req.Context())
	user, err := h.auth.Me(req.Context(), owner)
	if err != nil {
		writeError(res, req, h.log, "current user", err)
		return
	}
	_ = response.Write(res, http.StatusOK, response.OK("", authData{User: user}))
}
