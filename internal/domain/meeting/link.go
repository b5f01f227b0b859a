package meeting

import (
	"regexp"
	"strings"
)

// meetingURLPattern matches the conferencing providers we can send a bot to.
var meetingURLPattern = regexp.MustCompile(`https?://(?:www\.)?(?:zoom\.us|meet\.google\.com|teams\.microsoft\.com)\S+`)

// FindMeetingLink scans the free-text location and description of a calendar
// event for a conferencing URL and classifies its platform. Only the first
// match in scan order is used, even when several links are present.
func FindMeetingLink(location, description string) (string, Platform) {
	text := location + " " + description
	match := meetingURLPattern.FindString(text)
	if match == "" {
		return "", PlatformNone
	}
	return match, classifyPlatform(match)
}

func classifyPlatform(url string) Platform {
	switch {
	case strings.Contains(url, "zoom"):
		return PlatformZoom
	case strings.Contains(url, "google"):
		return PlatformGoogleMeet
	case strings.Contains(url, "teams"):
		return PlatformTeams
	}
	return PlatformNone
}
