package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// profileYAML is the on-disk representation. Durations are strings so
// profiles can use formats like "15m", "24h" or "30d".
type profileYAML struct {
	Name          string               `yaml:"name"`
	Description   string               `yaml:"description,omitempty"`
	Algorithm     string               `yaml:"algorithm"`
	Key           string               `yaml:"key,omitempty"`
	TTL           string               `yaml:"ttl,omitempty"`
	NotBeforeSkew string               `yaml:"not_before_skew,omitempty"`
	AutoID        bool                 `yaml:"auto_id,omitempty"`
	Claims        map[string]string    `yaml:"claims,omitempty"`
	Variables     map[string]*Variable `yaml:"variables,omitempty"`
}

// LoadProfileFromFile loads a profile from a YAML file.
func LoadProfileFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return LoadProfileFromBytes(data)
}

// LoadProfileFromBytes parses a profile from YAML content.
func LoadProfileFromBytes(data []byte) (*Profile, error) {
	var py profileYAML
	if err := yaml.Unmarshal(data, &py); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	alg, err := crypto.ParseAlgorithm(py.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", py.Name, err)
	}

	p := &Profile{
		Name:        py.Name,
		Description: py.Description,
		Algorithm:   alg,
		KeyID:       py.Key,
		AutoID:      py.AutoID,
		Claims:      py.Claims,
		Variables:   py.Variables,
	}

	if py.TTL != "" {
		d, err := parseDuration(py.TTL)
		if err != nil {
			return nil, fmt.Errorf("profile %s: invalid ttl: %w", py.Name, err)
		}
		p.TTL = d
	}
	if py.NotBeforeSkew != "" {
		d, err := parseDuration(py.NotBeforeSkew)
		if err != nil {
			return nil, fmt.Errorf("profile %s: invalid not_before_skew: %w", py.Name, err)
		}
		p.NotBeforeSkew = d
	}

	for name, v := range p.Variables {
		if v != nil {
			v.Name = name
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseDuration parses a duration, extending the standard formats with a
// day suffix ("30d").
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("duration is empty")
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	var total time.Duration
	remaining := s

	if idx := strings.Index(remaining, "d"); idx >= 0 {
		days, err := parseInt(remaining[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid days: %w", err)
		}
		total += time.Duration(days) * 24 * time.Hour
		remaining = remaining[idx+1:]
	}

	if remaining != "" {
		d, err := time.ParseDuration(remaining)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %w", err)
		}
		total += d
	}

	return total, nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid number: %s", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// LoadProfilesFromDirectory loads all profiles from a directory.
// Returns a map of profile name to Profile.
func LoadProfilesFromDirectory(dir string) (map[string]*Profile, error) {
	profiles := make(map[string]*Profile)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p, err := LoadProfileFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		profiles[p.Name] = p
	}

	return profiles, nil
}

// Store holds named profiles loaded from the embedded defaults and an
// optional directory. Directory profiles shadow builtin ones.
type Store struct {
	mu       sync.RWMutex
	dir      string
	profiles map[string]*Profile
}

// NewStore creates a profile store rooted at dir. An empty dir loads only
// the builtin profiles.
func NewStore(dir string) *Store {
	return &Store{
		dir:      dir,
		profiles: make(map[string]*Profile),
	}
}

// Load populates the store. Builtin profiles are loaded first, then the
// directory profiles on top.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	builtin, err := BuiltinProfiles()
	if err != nil {
		return err
	}
	s.profiles = builtin

	if s.dir == "" {
		return nil
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil
	}

	local, err := LoadProfilesFromDirectory(s.dir)
	if err != nil {
		return err
	}
	for name, p := range local {
		s.profiles[name] = p
	}
	return nil
}

// Get returns the named profile.
func (s *Store) Get(name string) (*Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	return p, ok
}

// List returns the sorted profile names.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all profiles keyed by name.
func (s *Store) All() map[string]*Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Profile, len(s.profiles))
	for name, p := range s.profiles {
		out[name] = p
	}
	return out
}
