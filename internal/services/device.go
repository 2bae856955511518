package services

import "strings"

// DeviceInfo is what can be told about a client from its user agent
type DeviceInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Browser string `json:"browser"`
	OS      string `json:"os"`
}

// Device types
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

type uaRule struct {
	token string
	name  string
}

// Order matters: Edge and Opera also carry "Chrome", Chrome carries "Safari".
var browserRules = []uaRule{
	{"Edg/", "Edge"},
	{"OPR/", "Opera"},
	{"Firefox/", "Firefox"},
	{"Chrome/", "Chrome"},
	{"Safari/", "Safari"},
	{"curl/", "curl"},
	{"PostmanRuntime/", "Postman"},
}

var osRules = []uaRule{
	{"iPhone", "iOS"},
	{"iPad", "iPadOS"},
	{"Android", "Android"},
	{"Windows", "Windows"},
	{"Mac OS X", "macOS"},
	{"CrOS", "ChromeOS"},
	{"Linux", "Linux"},
}

// ParseDevice derives device name, type, browser and OS from a user agent string
func ParseDevice(userAgent string) DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return DeviceInfo{Name: "Unknown Device", Type: DeviceUnknown, Browser: "Unknown", OS: "Unknown"}
	}

	info := DeviceInfo{Browser: "Unknown", OS: "Unknown", Type: DeviceDesktop}
	for _, r := range browserRules {
		if strings.Contains(userAgent, r.token) {
			info.Browser = r.name
			break
		}
	}
	for _, r := range osRules {
		if strings.Contains(userAgent, r.token) {
			info.OS = r.name
			break
		}
	}

	switch {
	case strings.Contains(userAgent, "iPad") || strings.Contains(userAgent, "Tablet"):
		info.Type = DeviceTablet
	case strings.Contains(userAgent, "Mobile") || strings.Contains(userAgent, "iPhone"):
		info.Type = DeviceMobile
	case info.OS == "Android":
		info.Type = DeviceTablet
	case info.OS == "Unknown":
		info.Type = DeviceUnknown
	}

	info.Name = info.Browser + " on " + info.OS
	return info
}
