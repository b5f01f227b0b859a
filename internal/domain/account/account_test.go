package account_test

import (
	"testing"
	"time"

	"meetscribe-server/internal/domain/account"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestNeedsRefresh(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry recorded", nil, false},
		{"expires well in the future", timePtr(now.Add(time.Hour)), false},
		{"expires inside refresh window", timePtr(now.Add(30 * time.Second)), true},
		{"already expired", timePtr(now.Add(-time.Minute)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.ConnectedAccount{ExpiresAt: tt.expiresAt}
			if got := a.NeedsRefresh(now); got != tt.want {
				t.Errorf("NeedsRefresh = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	a := &account.ConnectedAccount{ExpiresAt: timePtr(now.Add(-time.Second))}
	if !a.Expired(now) {
		t.Error("token past expiry should be expired")
	}

	a.ExpiresAt = timePtr(now.Add(30 * time.Second))
	if a.Expired(now) {
		t.Error("token close to expiry is not yet expired")
	}

	a.ExpiresAt = nil
	if a.Expired(now) {
		t.Error("token without expiry never expires")
	}
}
