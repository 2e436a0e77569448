package surf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidInput is returned for malformed coordinates, radii or profiles.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a spot or preference profile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured marks a provider that lacks required configuration.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrProviderUnavailable marks a provider whose circuit is open.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

var validate = validator.New()

// ValidateProfile checks the required fields and the min < max wave invariant.
func ValidateProfile(p PreferenceProfile) error {
	if err := validate.Struct(p); err != nil {
		return invalid(err)
	}
	if p.Home != nil && !p.Home.Valid() {
		return fmt.Errorf("%w: home coordinate out of range", ErrInvalidInput)
	}
	return nil
}

func invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

func normalizeLabel(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
