package handler

import (
	"net/http"
	"sort"

	"github.com/EdibuLLC/JSONWebToken/internal/api/service"
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
)

// JWKSHandler serves the JSON Web Key Set of the configured signing keys.
type JWKSHandler struct {
	keys *service.KeySet
}

// NewJWKSHandler creates a new JWKSHandler.
func NewJWKSHandler(keys *service.KeySet) *JWKSHandler {
	return &JWKSHandler{keys: keys}
}

// JWKS handles GET /.well-known/jwks.json
// Only asymmetric keys are published; HMAC secrets never leave the server.
func (h *JWKSHandler) JWKS(w http.ResponseWriter, r *http.Request) {
	publics := h.keys.PublicKeys()

	ids := make([]string, 0, len(publics))
	for id := range publics {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	set := jose.JWKS{}
	for _, id := range ids {
		key, ok := h.keys.Get(id)
		if !ok {
			continue
		}
		jwk, err := jose.NewJWK(publics[id], id, key.Algorithm)
		if err != nil {
			continue
		}
		set.Keys = append(set.Keys, jwk)
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	respondJSON(w, http.StatusOK, set)
}
