package httpapi

import (
	"regexp"

	"healthroute/internal/config"
	"healthroute/internal/geoutil"
	"healthroute/internal/models"
)

var postalCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

func isValidPostalCode(code string) bool {
	return postalCodePattern.MatchString(code)
}

func isValidSeverityLevel(level string) bool {
	switch models.SeverityLevel(level) {
	case models.SeverityMild, models.SeverityModerate, models.SeverityHigh, models.SeverityEmergency:
		return true
	default:
		return false
	}
}

func isValidCoordinate(bbox config.BoundingBox, lat, lng float64) bool {
	return geoutil.Finite(lat, lng) && bbox.Contains(lat, lng)
}
