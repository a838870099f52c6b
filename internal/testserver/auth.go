package testserver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// handleToken implements the client_credentials and refresh_token grants.
func (ts *TestServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid form")
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	grant := r.PostForm.Get("grant_type")
	switch grant {
	case "client_credentials":
		key, ok := ts.scripts[r.PostForm.Get("client_id")]
		if !ok || key != r.PostForm.Get("client_secret") {
			writeErrors(w, http.StatusBadRequest, "Can't authenticate script")
			return
		}
	case "refresh_token":
		hash := hashToken(r.PostForm.Get("refresh_token"))
		if !ts.refreshTokens[hash] {
			writeErrors(w, http.StatusBadRequest, "Invalid refresh token")
			return
		}
		delete(ts.refreshTokens, hash)
	default:
		writeErrors(w, http.StatusBadRequest, "Unsupported grant type")
		return
	}

	ts.nextToken++
	access := fmt.Sprintf("access-%d", ts.nextToken)
	refresh := fmt.Sprintf("refresh-%d", ts.nextToken)
	ts.accessTokens[hashToken(access)] = true
	ts.refreshTokens[hashToken(refresh)] = true
	ts.grants[grant]++

	writeJSON(w, http.StatusOK, map[string]any{
		"token_type":    "Bearer",
		"access_token":  access,
		"expires_in":    ts.tokenTTL,
		"refresh_token": refresh,
	})
}

// authMiddleware rejects requests without a bearer token issued by this site.
func (ts *TestServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token == "" {
			writeErrors(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		ts.mu.Lock()
		valid := ts.accessTokens[hashToken(token)]
		ts.mu.Unlock()
		if !valid {
			writeErrors(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
