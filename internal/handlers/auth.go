// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/park/internal/auth"
	"github.com/jason-s-yu/park/internal/chain"
)

type loginRequest struct {
	Address   chain.Address `json:"address"`
	Timestamp int64         `json:"timestamp"`
	// Signature is the wallet's ed25519 signature over auth.LoginMessage, base64 encoded.
	Signature []byte `json:"signature"`
}

// LoginHandler exchanges a signed login message for a session token.
// The token is returned in the body and as the auth_token cookie.
func (s *APIServer) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := auth.VerifyLogin(req.Address, req.Timestamp, req.Signature, s.now()); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	token, err := s.Sessions.CreateJWT(req.Address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"address": req.Address.String(),
		"token":   token,
	})
}

// requireWallet authenticates r and writes a 401 if it fails.
func (s *APIServer) requireWallet(w http.ResponseWriter, r *http.Request) (chain.Signer, bool) {
	wallet, err := s.authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return nil, false
	}
	return wallet, true
}
