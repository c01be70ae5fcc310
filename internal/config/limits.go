package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	MaxFileNameLength = 255

	// MaxRequirementTitleLength bounds requirement titles.
	MaxRequirementTitleLength = 255

	// DefaultRequirementMaxSize is the per-submission size limit in MB when none is given.
	DefaultRequirementMaxSize = 10
)

// MaxTreeDepth bounds upward walks (size propagation, breadcrumbs).
const MaxTreeDepth = 512
