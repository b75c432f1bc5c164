// Package pricing maps a device's spec tier and a session length to a cost.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
)

const (
	// StandardRate is the hourly rate for standard devices
	StandardRate = 50.0
	// PremiumRate is the hourly rate for devices with 32GB of memory
	PremiumRate = 80.0
	// PremiumMarker is the specs substring that puts a device in the premium tier
	PremiumMarker = "32GB"

	// Increment is the smallest billable unit, in hours
	Increment = 0.5
	// MaxDuration caps a single session, in hours
	MaxDuration = 12.0
)

// IsPremium reports whether specs describe a premium-tier device
func IsPremium(specs string) bool {
	return strings.Contains(specs, PremiumMarker)
}

// Rate returns the hourly rate for a device with the given specs
func Rate(specs string) float64 {
	if IsPremium(specs) {
		return PremiumRate
	}
	return StandardRate
}

// ValidateDuration checks that hours is a positive multiple of Increment no larger than MaxDuration
func ValidateDuration(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return fmt.Errorf("%w: must be positive, got %v", models.ErrInvalidDuration, hours)
	}
	if hours > MaxDuration {
		return fmt.Errorf("%w: at most %v hours, got %v", models.ErrInvalidDuration, MaxDuration, hours)
	}
	if steps := hours / Increment; steps != math.Trunc(steps) {
		return fmt.Errorf("%w: must be a multiple of %v hours, got %v", models.ErrInvalidDuration, Increment, hours)
	}
	return nil
}

// Cost returns rate(specs) * hours, rounded to cents
func Cost(specs string, hours float64) float64 {
	return math.Round(Rate(specs)*hours*100) / 100
}
