package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds cell identifiers accepted from netlist files.
const maxNameLength = 256

// ValidateCellName validates a cell identifier read from a netlist.
//
// Rules:
//   - No empty names
//   - Maximum length of 256 characters
//   - No control characters or whitespace
//   - No '.', which separates cell and pin in wire statements
func ValidateCellName(name string) error {
	if name == "" {
		return New(ErrCodeParse, "cell name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeParse, "cell name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeParse, "cell name %q contains invalid characters", name)
		}
	}

	if strings.Contains(name, ".") {
		return New(ErrCodeParse, "cell name %q cannot contain '.'", name)
	}

	return nil
}

// ValidateURI validates a backend connection string for safety.
// It ensures the URI uses one of the allowed schemes.
func ValidateURI(raw string, schemes ...string) error {
	if raw == "" {
		return New(ErrCodeInvalidOptions, "URI cannot be empty")
	}

	for _, r := range raw {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidOptions, "URI contains invalid characters")
		}
	}

	for _, s := range schemes {
		if strings.HasPrefix(raw, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidOptions, "URI must use one of the schemes: %s", strings.Join(schemes, ", "))
}
