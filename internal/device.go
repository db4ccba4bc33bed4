package internal

import "github.com/mileusna/useragent"

// Device is the parsed form of a raw user-agent string.
type Device struct {
	Browser string
	OS      string
	Device  string
}

// ParseUserAgent extracts browser, OS and device model from a raw user-agent
// string. An unrecognized device falls back to "Desktop", mirroring what the
// session views expect for ordinary browsers.
func ParseUserAgent(raw string) Device {
	if raw == "" {
		return Device{}
	}
	ua := useragent.Parse(raw)
	device := ua.Device
	if device == "" {
		device = "Desktop"
	}
	return Device{
		Browser: ua.Name,
		OS:      ua.OS,
		Device:  device,
	}
}
