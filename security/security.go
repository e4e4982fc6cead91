// Package security holds small request hygiene helpers shared by the HTTP layer.
package security

import (
	"mime"
	"net/http"
)

const redacted = "[REDACTED]"

var sensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Razorpay-Signature",
}

// RedactHeaders returns a copy of headers with credential-bearing values masked.
// The original header map is left untouched.
func RedactHeaders(headers http.Header) http.Header {
	out := headers.Clone()
	for _, name := range sensitiveHeaders {
		if out.Get(name) != "" {
			out.Set(name, redacted)
		}
	}
	return out
}

// AllowedBodyType reports whether a request body of this content type may be bound.
// Parameters such as charset are ignored.
func AllowedBodyType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/json", "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return false
}
