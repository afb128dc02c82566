package profile

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/EdibuLLC/JSONWebToken/profiles"
)

// BuiltinProfiles returns the predefined signing profiles. These are
// compiled into the binary and serve as templates.
func BuiltinProfiles() (map[string]*Profile, error) {
	out := make(map[string]*Profile)

	err := fs.WalkDir(profiles.FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		data, err := profiles.FS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read embedded profile %s: %w", path, err)
		}
		p, err := LoadProfileFromBytes(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		out[p.Name] = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
