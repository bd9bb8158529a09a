package middleware

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Input bounds for the public API.
const (
	MaxChannelIDLen  = 32
	MaxAnalyzeURLLen = 512
	DefaultTopLimit  = 10
	MaxTopLimit      = 50
)

// channelIDRe matches canonical YouTube channel IDs: "UC" followed by 22
// ID-alphabet characters.
var channelIDRe = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateChannelID checks that a channel ID is a canonical UC-prefixed ID.
func ValidateChannelID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "channelId is required"
	}
	if len(id) > MaxChannelIDLen {
		return "", "channelId must be at most 32 characters"
	}
	if !channelIDRe.MatchString(id) {
		return "", "channelId must be a canonical channel ID (UC...)"
	}
	return id, ""
}

// ValidateAnalyzeURL checks the free-form identifier accepted by the
// analyze endpoint: a channel ID, channel/video URL, @handle or channel
// name. Resolution of the identifier happens downstream; this only rejects
// inputs that cannot possibly resolve.
func ValidateAnalyzeURL(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "url is required"
	}
	if len(raw) > MaxAnalyzeURLLen {
		return "", "url must be at most 512 characters"
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return "", "url contains control characters"
		}
	}
	return raw, ""
}

// ValidateLimit parses an optional ?limit= query value, clamped to
// [1, MaxTopLimit]. Empty or malformed values fall back to the default.
func ValidateLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTopLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return DefaultTopLimit
	}
	return min(n, MaxTopLimit)
}
