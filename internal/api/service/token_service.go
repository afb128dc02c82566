package service

import (
	"context"
	"fmt"
	"time"

	"github.com/EdibuLLC/JSONWebToken/internal/api/dto"
	"github.com/EdibuLLC/JSONWebToken/internal/audit"
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
	"github.com/EdibuLLC/JSONWebToken/internal/profile"
)

// TokenService issues, verifies and decodes tokens for the REST API.
type TokenService struct {
	keys     *KeySet
	profiles *profile.Store
}

// NewTokenService creates a new TokenService.
func NewTokenService(keys *KeySet, profiles *profile.Store) *TokenService {
	return &TokenService{keys: keys, profiles: profiles}
}

// ErrProfileNotFound is reported when a sign request names an unknown
// profile.
var ErrProfileNotFound = fmt.Errorf("profile not found")

// ErrKeyNotFound is reported when a profile references a key that is not
// configured.
var ErrKeyNotFound = fmt.Errorf("signing key not found")

// Sign issues a token from a profile.
func (s *TokenService) Sign(ctx context.Context, req *dto.TokenSignRequest) (*dto.TokenSignResponse, error) {
	prof, ok := s.profiles.Get(req.Profile)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, req.Profile)
	}

	key, ok := s.keys.Get(prof.KeyID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, prof.KeyID)
	}
	if key.Algorithm != prof.Algorithm {
		return nil, fmt.Errorf("profile %s wants %s but key %s holds %s",
			prof.Name, prof.Algorithm, key.ID, key.Algorithm)
	}

	engine, err := profile.NewTemplateEngine(prof)
	if err != nil {
		return nil, err
	}
	claims, err := engine.Render(req.Variables)
	if err != nil {
		return nil, err
	}

	// Extra request claims must not shadow what the profile rendered.
	for name, value := range req.Claims {
		if _, exists := claims[name]; exists {
			return nil, fmt.Errorf("claim %q is set by the profile and cannot be overridden", name)
		}
		claims[name] = value
	}

	token := jose.New(claims)
	token.Header.KeyID = key.ID

	signed, err := token.SignedString(key.Signer)
	if err != nil {
		_ = audit.LogTokenSigned(prof.Name, string(key.Algorithm), key.ID, claims.ID(), claims.Subject(), false)
		return nil, err
	}

	if err := audit.LogTokenSigned(prof.Name, string(key.Algorithm), key.ID, claims.ID(), claims.Subject(), true); err != nil {
		return nil, err
	}

	resp := &dto.TokenSignResponse{
		Token:     signed,
		TokenID:   claims.ID(),
		Algorithm: string(key.Algorithm),
		KeyID:     key.ID,
	}
	if exp, ok := claims.ExpiresAt(); ok {
		resp.ExpiresAt = exp.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// Verify checks a token's signature and claims. Verification failures are
// reported in the response, not as errors; errors are reserved for
// malformed requests and audit failures.
func (s *TokenService) Verify(ctx context.Context, req *dto.TokenVerifyRequest) (*dto.TokenVerifyResponse, error) {
	token, err := jose.Decode(req.Token)
	if err != nil {
		return nil, err
	}

	resp := &dto.TokenVerifyResponse{
		Algorithm: token.Header.Algorithm,
	}

	if _, err := jose.Verify(req.Token, s.keys.Verifiers()...); err != nil {
		resp.Reason = err.Error()
		if auditErr := audit.LogTokenVerified(token.Header.Algorithm, token.Claims.ID(), false, resp.Reason); auditErr != nil {
			return nil, auditErr
		}
		return resp, nil
	}

	validator := &jose.Validator{
		ExpectedIssuer:   req.Issuer,
		ExpectedAudience: req.Audience,
		ExpectedSubject:  req.Subject,
	}
	if err := validator.Validate(token.Claims); err != nil {
		resp.Reason = err.Error()
		if auditErr := audit.LogTokenVerified(token.Header.Algorithm, token.Claims.ID(), false, resp.Reason); auditErr != nil {
			return nil, auditErr
		}
		return resp, nil
	}

	resp.Valid = true
	resp.Claims = token.Claims
	if err := audit.LogTokenVerified(token.Header.Algorithm, token.Claims.ID(), true, ""); err != nil {
		return nil, err
	}
	return resp, nil
}

// Decode parses a token without verifying its signature.
func (s *TokenService) Decode(ctx context.Context, req *dto.TokenDecodeRequest) (*dto.TokenDecodeResponse, error) {
	token, err := jose.Decode(req.Token)
	if err != nil {
		return nil, err
	}

	header := map[string]any{
		"alg": token.Header.Algorithm,
	}
	if token.Header.Type != "" {
		header["typ"] = token.Header.Type
	}
	if token.Header.KeyID != "" {
		header["kid"] = token.Header.KeyID
	}
	if token.Header.ContentType != "" {
		header["cty"] = token.Header.ContentType
	}

	return &dto.TokenDecodeResponse{
		Header: header,
		Claims: token.Claims,
	}, nil
}
