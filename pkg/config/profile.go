package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TenantProfile represents a tenant-specific preview configuration profile.
type TenantProfile struct {
	Name      string          `yaml:"name" json:"name"`
	Code      string          `yaml:"code" json:"code"`
	Sources   SourcePolicy    `yaml:"sources" json:"sources"`
	Limits    LimitsConfig    `yaml:"limits" json:"limits"`
	Overrides OverridesConfig `yaml:"overrides" json:"overrides"`
}

// SourcePolicy controls which content locations a tenant may preview.
type SourcePolicy struct {
	AllowedSchemes []string `yaml:"allowed_schemes" json:"allowed_schemes"`
	AllowedHosts   []string `yaml:"allowed_hosts,omitempty" json:"allowed_hosts,omitempty"`
}

// LimitsConfig holds tenant-level preview limits.
type LimitsConfig struct {
	MaxFileBytes    int64 `yaml:"max_file_bytes" json:"max_file_bytes"`
	RPM             int   `yaml:"rpm,omitempty" json:"rpm,omitempty"`
	Burst           int   `yaml:"burst,omitempty" json:"burst,omitempty"`
	MediaTTLMinutes int   `yaml:"media_ttl_minutes,omitempty" json:"media_ttl_minutes,omitempty"`
}

// MediaTTL returns the tenant media lease lifetime, zero when the
// profile does not override the server default.
func (l LimitsConfig) MediaTTL() time.Duration {
	return time.Duration(l.MediaTTLMinutes) * time.Minute
}

// OverridesConfig points at a tenant classifier-override document.
type OverridesConfig struct {
	ClassifierPath string `yaml:"classifier_path,omitempty" json:"classifier_path,omitempty"`
}

// LoadProfile loads a tenant profile YAML by tenant code.
// It searches the profiles directory for profile_<code>.yaml.
func LoadProfile(profilesDir, code string) (*TenantProfile, error) {
	code = strings.ToLower(code)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", code))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", code, err)
	}

	var profile TenantProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", code, err)
	}

	if profile.Code == "" {
		profile.Code = code
	}

	return &profile, nil
}

// LoadAllProfiles loads all profile_*.yaml files from the profiles directory.
func LoadAllProfiles(profilesDir string) (map[string]*TenantProfile, error) {
	matches, err := filepath.Glob(filepath.Join(profilesDir, "profile_*.yaml"))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*TenantProfile, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var profile TenantProfile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		if profile.Code == "" {
			// Extract code from filename: profile_acme.yaml -> acme
			base := filepath.Base(path)
			profile.Code = strings.TrimSuffix(strings.TrimPrefix(base, "profile_"), ".yaml")
		}

		profiles[profile.Code] = &profile
	}

	return profiles, nil
}

// SchemeAllowed checks if a URI scheme is allowed by the source policy.
// An empty allow-list permits every scheme the resolver supports.
func (p *TenantProfile) SchemeAllowed(scheme string) bool {
	if len(p.Sources.AllowedSchemes) == 0 {
		return true
	}
	for _, s := range p.Sources.AllowedSchemes {
		if s == scheme {
			return true
		}
	}
	return false
}

// HostAllowed checks if a hostname is allowed by the source policy.
func (p *TenantProfile) HostAllowed(hostname string) bool {
	if len(p.Sources.AllowedHosts) == 0 {
		return true
	}
	for _, h := range p.Sources.AllowedHosts {
		if h == hostname {
			return true
		}
	}
	return false
}
