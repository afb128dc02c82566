package jose

import (
	"errors"
	"testing"
	"time"
)

// =============================================================================
// Claims Validation Tests
// =============================================================================

func TestValidator(t *testing.T) {
	now := mustTime(t, "2026-08-31T12:00:00Z")
	clock := func() time.Time { return now }

	valid := Claims{}
	valid.SetIssuer("issuer")
	valid.SetSubject("subject")
	valid.SetAudience("api", "web")
	valid.SetExpiresAt(now.Add(time.Hour))
	valid.SetNotBefore(now.Add(-time.Hour))

	expired := Claims{}
	expired.SetExpiresAt(now.Add(-time.Minute))

	notYet := Claims{}
	notYet.SetNotBefore(now.Add(time.Minute))

	tests := []struct {
		name      string
		validator Validator
		claims    Claims
		wantErr   error
	}{
		{"all expectations met", Validator{
			ExpectedIssuer:   "issuer",
			ExpectedAudience: "web",
			ExpectedSubject:  "subject",
		}, valid, nil},
		{"no expectations", Validator{}, valid, nil},
		{"expired", Validator{}, expired, ErrTokenExpired},
		{"expired within leeway", Validator{Leeway: 5 * time.Minute}, expired, nil},
		{"not yet valid", Validator{}, notYet, ErrTokenNotYetValid},
		{"not yet valid within leeway", Validator{Leeway: 5 * time.Minute}, notYet, nil},
		{"issuer mismatch", Validator{ExpectedIssuer: "other"}, valid, ErrIssuerMismatch},
		{"audience mismatch", Validator{ExpectedAudience: "admin"}, valid, ErrAudienceMismatch},
		{"subject mismatch", Validator{ExpectedSubject: "other"}, valid, ErrSubjectMismatch},
		{"required claim present", Validator{RequiredClaims: []string{"iss", "sub"}}, valid, nil},
		{"required claim missing", Validator{RequiredClaims: []string{"jti"}}, valid, ErrClaimMissing},
		{"empty claims pass zero validator", Validator{}, Claims{}, nil},
		{"issuer expected but absent", Validator{ExpectedIssuer: "issuer"}, Claims{}, ErrIssuerMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validator.Now = clock
			err := tt.validator.Validate(tt.claims)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ExpiryBeforeIssuerCheck(t *testing.T) {
	// An expired token fails on expiry even when other expectations
	// would also fail; the time checks run first.
	now := mustTime(t, "2026-08-31T12:00:00Z")

	claims := Claims{}
	claims.SetIssuer("wrong")
	claims.SetExpiresAt(now.Add(-time.Hour))

	v := Validator{
		ExpectedIssuer: "issuer",
		Now:            func() time.Time { return now },
	}
	if err := v.Validate(claims); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}
