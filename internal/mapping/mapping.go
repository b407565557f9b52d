// Package mapping holds the pure field-mapping rules between Organizze
// records and myPay documents. Everything here is deterministic and does no
// I/O.
package mapping

import (
	"strings"
	"time"
)

var accountTypes = map[string]string{
	"checking": "checking",
	"savings":  "savings",
	"other":    "wallet",
}

// AccountType maps an Organizze account type to a myPay account type.
// Unknown types become "wallet".
func AccountType(orgType string) string {
	if t, ok := accountTypes[orgType]; ok {
		return t
	}
	return "wallet"
}

var cardBrands = map[string]string{
	"visa":       "Visa",
	"mastercard": "Mastercard",
	"amex":       "American Express",
	"elo":        "Elo",
	"hipercard":  "Hipercard",
	"diners":     "Diners",
}

// CardBrand maps a card network identifier to a display brand name.
// Unrecognized networks pass through verbatim; an empty network is "Outro".
func CardBrand(network string) string {
	if b, ok := cardBrands[strings.ToLower(network)]; ok {
		return b
	}
	if network == "" {
		return "Outro"
	}
	return network
}

var cardColors = map[string]string{
	"visa":       "blue",
	"mastercard": "red",
	"amex":       "slate",
	"elo":        "orange",
	"hipercard":  "red",
	"nubank":     "purple",
}

// CardColor returns the UI color for a card network, defaulting to "slate".
func CardColor(network string) string {
	if c, ok := cardColors[strings.ToLower(network)]; ok {
		return c
	}
	return "slate"
}

// DateAtNoon parses an Organizze calendar-day string (YYYY-MM-DD) into a
// local timestamp pinned to noon, so the stored value renders as the same
// calendar day regardless of the viewer's timezone offset. Empty or
// unparseable input falls back to today at noon.
func DateAtNoon(s string) time.Time {
	if s != "" {
		if d, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
			return noonOf(d)
		}
	}
	return noonOf(time.Now())
}

func noonOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local)
}

// CategorySlug turns a category display name into the slug the app uses as
// category id: lowercased, spaces replaced with underscores. A missing name
// maps to the catch-all "outros".
func CategorySlug(name string) string {
	if name == "" {
		return "outros"
	}
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

var mimeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"txt":  "text/plain",
}

// ResolveContentType picks the content type to store for a downloaded file.
// A concrete response header wins verbatim, even when the filename extension
// disagrees. Absent or generic octet-stream placeholders fall back to the
// extension table; unknown extensions default to application/octet-stream.
func ResolveContentType(header, filename string) string {
	if header != "" && header != "application/octet-stream" && header != "binary/octet-stream" {
		return header
	}
	return contentTypeFromFilename(filename)
}

func contentTypeFromFilename(filename string) string {
	lower := strings.ToLower(filename)
	idx := strings.LastIndex(lower, ".")
	if idx < 0 {
		return "application/octet-stream"
	}
	if mime, ok := mimeByExtension[lower[idx+1:]]; ok {
		return mime
	}
	return "application/octet-stream"
}
