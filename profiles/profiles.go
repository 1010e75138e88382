// Package profiles manages the translator profile shown on the dashboard
// settings page.
package profiles

import (
	"context"
	"unicode"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

type Badge string

const (
	BadgeHobbyist Badge = "HOBBYIST"
	BadgePro      Badge = "PRO"
	BadgeExpert   Badge = "EXPERT"
)

func (b Badge) Valid() bool {
	switch b {
	case BadgeHobbyist, BadgePro, BadgeExpert:
		return true
	}
	return false
}

type Profile struct {
	// From the identity account; never changed here
	ID    string            `json:"id"`
	Email string            `json:"email"`
	Role  identity.RoleType `json:"role"`

	ProfileID      string `json:"profileId"`
	DisplayName    string `json:"displayName"`
	Bio            string `json:"bio"`
	AvatarURL      string `json:"avatarUrl"`
	Badge          Badge  `json:"badge"`
	TotalProjects  int    `json:"totalProjects"`
	TotalFollowers int    `json:"totalFollowers"`
}

// Update carries the editable fields. Empty fields are left unchanged.
type Update struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
	Badge       Badge  `json:"badge"`
}

type Repo interface {
	// Get returns the profile of user, creating it on first access
	Get(ctx context.Context, user identity.User) (*Profile, error)
	Update(ctx context.Context, userID string, update Update) (*Profile, error)
	UpdatePassword(ctx context.Context, userID, current, next string) error
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.Wrapf(errors.ErrWeakPassword, "password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return errors.Wrapf(errors.ErrWeakPassword, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.Wrapf(errors.ErrWeakPassword, "password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.Wrapf(errors.ErrWeakPassword, "password must contain at least one number")
	}
	return nil
}
