package drive

// Capability is a permission granted to a folder or file's share list.
type Capability string

const (
	CapabilityRead     Capability = "read"
	CapabilityWrite    Capability = "write"
	CapabilityDownload Capability = "download"
	CapabilityShare    Capability = "share"
	CapabilityEdit     Capability = "edit"
)

// AllCapabilities is the closed capability set.
var AllCapabilities = []Capability{
	CapabilityRead,
	CapabilityWrite,
	CapabilityDownload,
	CapabilityShare,
	CapabilityEdit,
}

// Valid reports whether c belongs to the closed capability set.
func (c Capability) Valid() bool {
	for _, known := range AllCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// AccessControl is the slice of an entity the permission guard looks at.
type AccessControl struct {
	AuthorID    string
	OwnerID     string
	SharedTo    []string
	Permissions []Capability
}

// Shareable is implemented by Folder and File.
type Shareable interface {
	ACL() AccessControl
}

// HasCapability reports whether caps contains c.
func HasCapability(caps []Capability, c Capability) bool {
	for _, have := range caps {
		if have == c {
			return true
		}
	}
	return false
}
