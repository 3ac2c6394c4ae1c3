package errors

import (
	"math"
	"strings"
	"unicode"
)

// Date bounds accepted by the chart service.
const (
	MinYear = 1800
	MaxYear = 2400
)

// ValidateDate validates the calendar fields of a chart request.
// Month is 1-based. Day is checked against the actual length of the month,
// including leap years.
func ValidateDate(year, month, day, hour, minute int) error {
	if year < MinYear || year > MaxYear {
		return New(ErrCodeInvalidDate, "year out of range: %d (must be %d-%d)", year, MinYear, MaxYear)
	}
	if month < 1 || month > 12 {
		return New(ErrCodeInvalidDate, "month out of range: %d (must be 1-12)", month)
	}
	if day < 1 || day > daysIn(year, month) {
		return New(ErrCodeInvalidDate, "day out of range: %d for %04d-%02d", day, year, month)
	}
	if hour < 0 || hour > 23 {
		return New(ErrCodeInvalidDate, "hour out of range: %d (must be 0-23)", hour)
	}
	if minute < 0 || minute > 59 {
		return New(ErrCodeInvalidDate, "minute out of range: %d (must be 0-59)", minute)
	}
	return nil
}

func daysIn(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// ValidateCoordinates validates a latitude/longitude pair and a UTC offset in hours.
func ValidateCoordinates(lat, lon, utcOffset float64) error {
	for _, v := range []float64{lat, lon, utcOffset} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidLocation, "coordinates must be finite numbers")
		}
	}
	if lat < -90 || lat > 90 {
		return New(ErrCodeInvalidLocation, "latitude out of range: %g (must be -90..90)", lat)
	}
	if lon < -180 || lon > 180 {
		return New(ErrCodeInvalidLocation, "longitude out of range: %g (must be -180..180)", lon)
	}
	if utcOffset < -12 || utcOffset > 14 {
		return New(ErrCodeInvalidLocation, "utc offset out of range: %g (must be -12..14)", utcOffset)
	}
	return nil
}

// ValidateQuery validates a free-text location query.
//
// The validation rules are intentionally conservative:
//   - No empty or blank queries
//   - No control characters
//   - Maximum length of 200 characters
func ValidateQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return New(ErrCodeInvalidInput, "location query cannot be empty")
	}

	const maxQueryLength = 200
	if len(q) > maxQueryLength {
		return New(ErrCodeInvalidInput, "location query too long (max %d characters)", maxQueryLength)
	}

	for _, r := range q {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "location query contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
