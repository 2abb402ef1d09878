package server

import (
	"net/http"

	"github.com/Now-Tiger/Flow/internal/contract"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
)

var credentialMessages = messages{
	domain.ErrValidation:   "Email and password are required",
	domain.ErrUnauthorized: "Invalid email or password",
	domain.ErrConflict:     "Email already registered",
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req contract.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, credentialMessages)
		return
	}
	u, err := s.svc.Auth.Signup(r.Context(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.fail(w, r, err, credentialMessages)
		return
	}
	s.setSession(w, u.ID)
	respondJSON(w, http.StatusCreated, contract.UserEnvelope{User: contract.NewUser(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req contract.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, credentialMessages)
		return
	}
	u, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err, credentialMessages)
		return
	}
	s.setSession(w, u.ID)
	respondJSON(w, http.StatusOK, contract.UserEnvelope{User: contract.NewUser(u)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	respondJSON(w, http.StatusOK, contract.SuccessResponse{Success: true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Auth.Me(r.Context(), sessionFrom(r.Context()).UserID)
	if err != nil {
		s.fail(w, r, err, messages{domain.ErrNotFound: "User not found"})
		return
	}
	respondJSON(w, http.StatusOK, contract.UserEnvelope{User: contract.NewUser(u)})
}
