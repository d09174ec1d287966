package analytics

import "strings"

const (
	BrowserChrome  = "Chrome"
	BrowserFirefox = "Firefox"
	BrowserSafari  = "Safari"
	BrowserEdge    = "Edge"
	BrowserOpera   = "Opera"
	BrowserUnknown = "Unknown"

	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
)

// ClassifyBrowser maps a user agent to a browser family by case-insensitive
// substring match. Edge and Opera carry "chrome" and "safari" tokens too, so
// they are checked first; Safari only counts without a Chrome token.
func ClassifyBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg"):
		return BrowserEdge
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return BrowserOpera
	case strings.Contains(ua, "firefox") || strings.Contains(ua, "fxios"):
		return BrowserFirefox
	case strings.Contains(ua, "chrome") || strings.Contains(ua, "crios"):
		return BrowserChrome
	case strings.Contains(ua, "safari"):
		return BrowserSafari
	default:
		return BrowserUnknown
	}
}

// ClassifyDevice defaults to Desktop unless a tablet or mobile token is present.
// Android phones say "mobile", Android tablets do not.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	mobile := strings.Contains(ua, "mobile")
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return DeviceTablet
	case strings.Contains(ua, "android") && !mobile:
		return DeviceTablet
	case mobile || strings.Contains(ua, "iphone") || strings.Contains(ua, "ipod") || strings.Contains(ua, "android"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}
