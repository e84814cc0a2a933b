package report

import (
	"fmt"
	"regexp"
)

// Fleet hostnames follow <country>-<region-code>-SCH-<site-code>-<suffix>,
// e.g. KE-NBO-SCH-0042A-SPEED1. The captured site code yields the human
// readable label; anything else falls back to the raw device identifier.
var sitePattern = regexp.MustCompile(`^[A-Z]{2}-[A-Z]+-SCH-([A-Z0-9]+)-[A-Z]+\d+$`)

// SiteName derives the site label from a device identifier.
func SiteName(deviceID string) string {
	match := sitePattern.FindStringSubmatch(deviceID)
	if match == nil {
		return deviceID
	}
	return fmt.Sprintf("School-%s", match[1])
}
