package capabilities

import (
	"embed"
	"fmt"
	"sync"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models/drive"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the upload and sharing policy
type Registry struct {
	fileTypes map[drive.FileType]*FileTypePolicy
	ordered   []FileTypePolicy
	defaults  map[EntityKind][]drive.Capability
	mu        sync.RWMutex
}

// NewRegistry creates a registry from the embedded policy file
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/drive.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read drive policy: %w", err)
	}
	return NewRegistryFromYAML(data)
}

// NewRegistryFromYAML builds a registry from raw YAML
func NewRegistryFromYAML(data []byte) (*Registry, error) {
	var policy DrivePolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drive policy: %w", err)
	}

	r := &Registry{
		fileTypes: make(map[drive.FileType]*FileTypePolicy, len(policy.FileTypes)),
		defaults:  make(map[EntityKind][]drive.Capability),
	}
	r.load(&policy)
	for kind, caps := range r.defaults {
		for _, c := range caps {
			if !c.Valid() {
				return nil, fmt.Errorf("unknown capability %q for %s", c, kind)
			}
		}
	}
	return r, nil
}

func (r *Registry) load(policy *DrivePolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ordered = policy.FileTypes
	for i := range r.ordered {
		r.fileTypes[r.ordered[i].Type] = &r.ordered[i]
	}
	for kind, caps := range policy.DefaultPermissions {
		r.defaults[kind] = caps
	}
}

// FileType returns the policy for t
func (r *Registry) FileType(t drive.FileType) (*FileTypePolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, ok := r.fileTypes[t]
	if !ok {
		return nil, domain.NewValidation(fmt.Sprintf("unsupported file type: %q", t))
	}
	return policy, nil
}

// ValidateUpload checks the type and the declared size of an upload
func (r *Registry) ValidateUpload(t drive.FileType, size int64) error {
	policy, err := r.FileType(t)
	if err != nil {
		return err
	}
	if size < 0 {
		return domain.NewValidation("file size must not be negative")
	}
	if size > policy.MaxBytes() {
		return domain.NewValidation(fmt.Sprintf("%s files are limited to %d MB", t, policy.MaxSizeMB))
	}
	return nil
}

// ListFileTypes returns all accepted types (ordered as defined in YAML)
func (r *Registry) ListFileTypes() []FileTypePolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FileTypePolicy, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// DefaultPermissions returns a copy of the default share capabilities for kind
func (r *Registry) DefaultPermissions(kind EntityKind) []drive.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := r.defaults[kind]
	out := make([]drive.Capability, len(caps))
	copy(out, caps)
	return out
}
