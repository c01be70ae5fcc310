package postgres

import "campusdrive/internal/domain/models/drive"

// CapsToStrings converts capabilities for TEXT[] columns
func CapsToStrings(caps []drive.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}

// StringsToCaps converts a scanned TEXT[] column back to capabilities
func StringsToCaps(values []string) []drive.Capability {
	out := make([]drive.Capability, len(values))
	for i, v := range values {
		out[i] = drive.Capability(v)
	}
	return out
}

// NonNil returns an empty slice for nil so TEXT[] NOT NULL columns accept it
func NonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
