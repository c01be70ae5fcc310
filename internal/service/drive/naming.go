package drive

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"campusdrive/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	copySuffix = regexp.MustCompile(`^(.*?)\s*\((\d+)\)$`)
	noSlashes  = regexp.MustCompile(`^[^/\\]+$`)
)

// validateName trims and checks a folder or file name
func validateName(name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("name is required"),
		validation.RuneLength(1, maxLen),
		validation.Match(noSlashes).Error("name cannot contain slashes"),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return name, nil
}

// nextCopyName keeps name when no sibling uses it. Otherwise it returns
// "base (n)" where n is one past the highest suffix among siblings sharing
// the base; freed numbers are never reused.
func nextCopyName(name string, siblings []string) string {
	taken := false
	for _, s := range siblings {
		if s == name {
			taken = true
			break
		}
	}
	if !taken {
		return name
	}

	base := name
	if m := copySuffix.FindStringSubmatch(name); m != nil {
		base = m[1]
	}

	highest := 0
	for _, s := range siblings {
		m := copySuffix.FindStringSubmatch(s)
		if m == nil || m[1] != base {
			continue
		}
		if n, err := strconv.Atoi(m[2]); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s (%d)", base, highest+1)
}
