package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// APIKeyLength is the exact length of an OpenWeatherMap API key.
const APIKeyLength = 32

// MaxCityLength bounds city input in runes.
const MaxCityLength = 100

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooLong is returned when the city exceeds MaxCityLength runes.
var ErrCityTooLong = errors.New("city too long")

// ErrAPIKeyLength is returned when an API key is not exactly APIKeyLength characters.
var ErrAPIKeyLength = errors.New("API key has wrong length")

// ValidateCity trims the input and enforces the length bound. Characters are not
// restricted; the geocoder decides whether a name resolves. Returns the trimmed string.
func ValidateCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return "", ErrCityEmpty
	}
	if n > MaxCityLength {
		return "", ErrCityTooLong
	}
	return s, nil
}

// ValidateAPIKey checks that key is exactly APIKeyLength characters. The key is not
// trimmed; callers trim user input before validating.
func ValidateAPIKey(key string) error {
	if n := utf8.RuneCountInString(key); n != APIKeyLength {
		return fmt.Errorf("%w: got %d, want %d", ErrAPIKeyLength, n, APIKeyLength)
	}
	return nil
}
