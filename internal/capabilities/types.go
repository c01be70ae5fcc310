package capabilities

import (
	"campusdrive/internal/domain/models/drive"

	"gopkg.in/yaml.v3"
)

// EntityKind selects a default permission set
type EntityKind string

const (
	KindFolder     EntityKind = "folder"
	KindFile       EntityKind = "file"
	KindSubmission EntityKind = "submission"
)

// FileTypePolicy describes one accepted upload type
type FileTypePolicy struct {
	// Type identifier (set during YAML unmarshaling)
	Type drive.FileType `yaml:"-" json:"type"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	MimeType    string `yaml:"mime_type" json:"mime_type"`
	MaxSizeMB   int64  `yaml:"max_size_mb" json:"max_size_mb"`
}

// MaxBytes returns the upload limit in bytes
func (p *FileTypePolicy) MaxBytes() int64 {
	return p.MaxSizeMB << 20
}

// DrivePolicy is the decoded content of config/drive.yaml
type DrivePolicy struct {
	FileTypes          []FileTypePolicy                  `yaml:"-" json:"file_types"` // Ordered slice, populated by custom unmarshaler
	DefaultPermissions map[EntityKind][]drive.Capability `yaml:"default_permissions" json:"default_permissions"`
}

// UnmarshalYAML implements custom YAML unmarshaling to preserve file type order from YAML file
func (p *DrivePolicy) UnmarshalYAML(node *yaml.Node) error {
	type plain struct {
		FileTypes          map[string]FileTypePolicy         `yaml:"file_types"`
		DefaultPermissions map[EntityKind][]drive.Capability `yaml:"default_permissions"`
	}
	var m plain
	if err := node.Decode(&m); err != nil {
		return err
	}
	p.DefaultPermissions = m.DefaultPermissions

	// Extract file type keys in YAML order
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "file_types" {
			continue
		}
		typesNode := node.Content[i+1]
		for j := 0; j+1 < len(typesNode.Content); j += 2 {
			id := typesNode.Content[j].Value
			if policy, ok := m.FileTypes[id]; ok {
				policy.Type = drive.FileType(id)
				p.FileTypes = append(p.FileTypes, policy)
			}
		}
		break
	}

	return nil
}
