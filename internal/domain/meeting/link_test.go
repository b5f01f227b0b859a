package meeting_test

import (
	"testing"

	"meetscribe-server/internal/domain/meeting"
)

func TestFindMeetingLink(t *testing.T) {
	tests := []struct {
		name         string
		location     string
		description  string
		wantURL      string
		wantPlatform meeting.Platform
	}{
		{
			name:         "zoom in location",
			location:     "https://zoom.us/j/123456789",
			description:  "",
			wantURL:      "https://zoom.us/j/123456789",
			wantPlatform: meeting.PlatformZoom,
		},
		{
			name:         "google meet in description",
			location:     "Conference room B",
			description:  "Join here: https://meet.google.com/abc-defg-hij",
			wantURL:      "https://meet.google.com/abc-defg-hij",
			wantPlatform: meeting.PlatformGoogleMeet,
		},
		{
			name:         "teams link",
			location:     "",
			description:  "https://teams.microsoft.com/l/meetup-join/19%3ameeting",
			wantURL:      "https://teams.microsoft.com/l/meetup-join/19%3ameeting",
			wantPlatform: meeting.PlatformTeams,
		},
		{
			name:         "location wins over description",
			location:     "https://zoom.us/j/111",
			description:  "backup: https://meet.google.com/xyz",
			wantURL:      "https://zoom.us/j/111",
			wantPlatform: meeting.PlatformZoom,
		},
		{
			name:         "www prefix accepted",
			location:     "http://www.zoom.us/j/222",
			description:  "",
			wantURL:      "http://www.zoom.us/j/222",
			wantPlatform: meeting.PlatformZoom,
		},
		{
			name:         "no link",
			location:     "Room 42",
			description:  "Quarterly review, bring slides",
			wantURL:      "",
			wantPlatform: meeting.PlatformNone,
		},
		{
			name:         "unrelated url ignored",
			location:     "",
			description:  "agenda at https://example.com/agenda",
			wantURL:      "",
			wantPlatform: meeting.PlatformNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, platform := meeting.FindMeetingLink(tt.location, tt.description)
			if url != tt.wantURL {
				t.Errorf("url = %q, want %q", url, tt.wantURL)
			}
			if platform != tt.wantPlatform {
				t.Errorf("platform = %q, want %q", platform, tt.wantPlatform)
			}
		})
	}
}
