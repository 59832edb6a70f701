package validate

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// URL validation errors
var (
	ErrInvalidURL       = errors.New("invalid URL format")
	ErrDisallowedScheme = errors.New("URL scheme not allowed")
	ErrUnexpectedPath   = errors.New("URL must not carry a path, query or fragment")
)

// URLConstraints defines validation constraints for URLs.
type URLConstraints struct {
	AllowedSchemes []string // e.g., []string{"https", "http"}
	OriginOnly     bool     // Reject anything beyond scheme://host[:port]
	MaxLength      int      // Maximum URL length (0 = no limit)
}

// CatalogURLConstraints accepts the base URL of a catalog search service.
// Plain HTTP is allowed for internal mirrors.
var CatalogURLConstraints = URLConstraints{
	AllowedSchemes: []string{"https", "http"},
	MaxLength:      2048,
}

// OriginConstraints accepts a browser origin for CORS allowlists.
var OriginConstraints = URLConstraints{
	AllowedSchemes: []string{"https", "http"},
	OriginOnly:     true,
	MaxLength:      512,
}

// URL validates a URL against the given constraints.
// Returns the validated URL string and an error if validation fails.
func URL(urlStr string, constraints URLConstraints) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return "", ErrEmpty
	}

	if constraints.MaxLength > 0 && len(urlStr) > constraints.MaxLength {
		return "", fmt.Errorf("%w: URL exceeds %d characters", ErrStringTooLong, constraints.MaxLength)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if len(constraints.AllowedSchemes) > 0 && !slices.Contains(constraints.AllowedSchemes, parsedURL.Scheme) {
		return "", fmt.Errorf("%w: got %q, allowed: %v", ErrDisallowedScheme, parsedURL.Scheme, constraints.AllowedSchemes)
	}

	if parsedURL.Hostname() == "" {
		return "", fmt.Errorf("%w: missing hostname", ErrInvalidURL)
	}

	if constraints.OriginOnly {
		if (parsedURL.Path != "" && parsedURL.Path != "/") || parsedURL.RawQuery != "" || parsedURL.Fragment != "" || parsedURL.User != nil {
			return "", ErrUnexpectedPath
		}
	}

	return urlStr, nil
}

// CatalogURL validates a catalog base URL.
func CatalogURL(urlStr string) (string, error) {
	return URL(urlStr, CatalogURLConstraints)
}

// Origin validates a CORS origin such as https://gifts.example.
func Origin(urlStr string) (string, error) {
	return URL(urlStr, OriginConstraints)
}
