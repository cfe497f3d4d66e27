// AngelaMos | 2026
// validation.go

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		case "uuid", "uuid4":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid identifier", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}

	return strings.Join(msgs, "; ")
}

func NewID() string {
	return uuid.New().String()
}

const idLength = 36

// IsValidID accepts only the hyphenated 36 character form, which is the
// one Postgres parses. uuid.Parse alone also admits urn and braced forms.
func IsValidID(id string) bool {
	if len(id) != idLength {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// ValidateIDs fails on the first malformed identifier.
func ValidateIDs(ids ...string) error {
	for _, id := range ids {
		if !IsValidID(id) {
			return InvalidRequest(fmt.Sprintf("invalid identifier %q", id))
		}
	}
	return nil
}

// CanonicalID lower-cases the hyphenated form so set comparisons
// never see two spellings of the same id.
func CanonicalID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", InvalidRequest(fmt.Sprintf("invalid identifier %q", id))
	}
	return parsed.String(), nil
}

// CanonicalIDs parses and de-duplicates ids, keeping first-seen order.
func CanonicalIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		canon, err := CanonicalID(id)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, canon)
	}

	return out, nil
}
