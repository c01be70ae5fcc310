package drive

import (
	"fmt"
	"strings"

	"campusdrive/internal/capabilities"
	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/drive"
	driveSvc "campusdrive/internal/domain/services/drive"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func validateEmails(emails []string) error {
	err := validation.Validate(emails,
		validation.Required.Error("at least one email is required"),
		validation.Each(validation.Required, is.EmailFormat),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// shareCapabilities validates a share request and falls back to the
// registry defaults for kind when no permissions were given
func (c *core) shareCapabilities(req *driveSvc.ShareRequest, kind capabilities.EntityKind) ([]models.Capability, error) {
	for i := range req.Emails {
		req.Emails[i] = strings.TrimSpace(req.Emails[i])
	}
	if err := validateEmails(req.Emails); err != nil {
		return nil, err
	}
	req.Emails = dedupe(req.Emails)

	if len(req.Permissions) == 0 {
		return c.Registry.DefaultPermissions(kind), nil
	}
	for _, p := range req.Permissions {
		if !p.Valid() {
			return nil, domain.NewValidation(fmt.Sprintf("unknown permission %q", p))
		}
	}
	return req.Permissions, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
