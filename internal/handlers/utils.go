// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/chain"
)

const authCookieName = "auth_token"

var errMissingToken = errors.New("missing auth_token")

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// requestToken reads the session token from the auth_token cookie or a Bearer header.
func requestToken(r *http.Request) string {
	if token := extractCookieToken(r.Header.Get("Cookie"), authCookieName); token != "" {
		return token
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// authenticate resolves the calling wallet of an HTTP request.
func (s *APIServer) authenticate(r *http.Request) (chain.Signer, error) {
	token := requestToken(r)
	if token == "" {
		return nil, errMissingToken
	}
	return s.Sessions.AuthenticateJWT(token)
}

// decodeBody decodes a JSON request body into v; an empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("bad request payload: %w", err)
	}
	return nil
}

func roomIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid room id: %w", err)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
