package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

const (
	defaultServing = "1 serving"
	canVolumeML    = 355.0
)

// Compiled regex patterns for serving parsing
var (
	servingMassPattern   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*g\b`)
	servingVolumePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*ml\b`)
	servingCountPattern  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:x|pcs|pieces|cookies|bars|eggs|slices)\b`)
	servingCanPattern    = regexp.MustCompile(`(?i)\bcan\b|\blata\b|\b33\s*cl\b`)
)

// Serving is a normalized serving description with its parsed units.
type Serving struct {
	Serving string
	Units   domain.ServingUnits
}

// NormalizeServingSize parses a free-text serving description. Unparseable
// text is returned unchanged with empty units.
func NormalizeServingSize(description string) Serving {
	text := strings.TrimSpace(description)
	if text == "" {
		return Serving{Serving: defaultServing}
	}

	var units domain.ServingUnits
	units.MassG = firstNumber(servingMassPattern, text)
	units.VolumeML = firstNumber(servingVolumePattern, text)
	units.Count = firstNumber(servingCountPattern, text)

	if units.VolumeML == nil && servingCanPattern.MatchString(text) {
		units.VolumeML = domain.Float64(canVolumeML)
	}

	return Serving{Serving: text, Units: units}
}

func firstNumber(pattern *regexp.Regexp, text string) *float64 {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}
