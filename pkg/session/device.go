package session

import (
	"strings"

	"ai-tutoring-be/internal/entity"
)

// ClassifyDevice maps a user agent to mobile, tablet, desktop or unknown.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return entity.DeviceTypeUnknown
	}

	switch {
	case strings.Contains(ua, "ipad"),
		strings.Contains(ua, "tablet"),
		strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return entity.DeviceTypeTablet
	case strings.Contains(ua, "mobile"),
		strings.Contains(ua, "iphone"),
		strings.Contains(ua, "ipod"),
		strings.Contains(ua, "android"),
		strings.Contains(ua, "windows phone"):
		return entity.DeviceTypeMobile
	}
	return entity.DeviceTypeDesktop
}

func normalizeClientMetadata(meta entity.ClientMetadata) entity.ClientMetadata {
	if meta.DeviceType == "" {
		meta.DeviceType = ClassifyDevice(meta.UserAgent)
	}
	return meta
}
