package service

import (
	"context"

	"github.com/EdibuLLC/JSONWebToken/internal/api/dto"
	"github.com/EdibuLLC/JSONWebToken/internal/profile"
)

// ProfileService exposes the signing profile store to the REST API.
type ProfileService struct {
	profiles *profile.Store
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles *profile.Store) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// List returns all available profiles.
func (s *ProfileService) List(ctx context.Context) (*dto.ProfileListResponse, error) {
	resp := &dto.ProfileListResponse{}
	for _, name := range s.profiles.List() {
		p, ok := s.profiles.Get(name)
		if !ok {
			continue
		}
		resp.Profiles = append(resp.Profiles, summarize(p))
	}
	return resp, nil
}

// Get returns one profile with its variables.
func (s *ProfileService) Get(ctx context.Context, name string) (*dto.ProfileDetail, bool) {
	p, ok := s.profiles.Get(name)
	if !ok {
		return nil, false
	}

	detail := &dto.ProfileDetail{
		ProfileSummary: summarize(p),
		Claims:         p.Claims,
	}
	if len(p.Variables) > 0 {
		detail.Variables = make(map[string]dto.ProfileVariable, len(p.Variables))
		for name, v := range p.Variables {
			detail.Variables[name] = dto.ProfileVariable{
				Type:        string(v.Type),
				Required:    v.Required,
				Default:     v.Default,
				Description: v.Description,
				Pattern:     v.Pattern,
				Enum:        v.Enum,
			}
		}
	}
	return detail, true
}

func summarize(p *profile.Profile) dto.ProfileSummary {
	summary := dto.ProfileSummary{
		Name:        p.Name,
		Description: p.Description,
		Algorithm:   string(p.Algorithm),
		KeyID:       p.KeyID,
	}
	if p.TTL > 0 {
		summary.TTL = p.TTL.String()
	}
	return summary
}
