package nxm

import (
	"errors"
	"testing"
	"time"
)

func TestParseValidURLWithAllParams(t *testing.T) {
	req, err := Parse("nxm://stardewvalley/mods/2400/files/9567?key=abc123&expires=1735344000&user_id=12345")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if req.Game != "stardewvalley" {
		t.Errorf("Expected game 'stardewvalley', got '%s'", req.Game)
	}
	if req.ModID != 2400 {
		t.Errorf("Expected mod ID 2400, got %d", req.ModID)
	}
	if req.FileID != 9567 {
		t.Errorf("Expected file ID 9567, got %d", req.FileID)
	}
	if req.Key != "abc123" {
		t.Errorf("Expected key 'abc123', got '%s'", req.Key)
	}
	if req.Expires != 1735344000 {
		t.Errorf("Expected expires 1735344000, got %d", req.Expires)
	}
	if req.UserID != 12345 {
		t.Errorf("Expected user ID 12345, got %d", req.UserID)
	}
}

func TestParseValidURLWithoutExpiration(t *testing.T) {
	req, err := Parse("nxm://stardewvalley/mods/2400/files/9567?key=abc123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if req.Expires != 0 {
		t.Errorf("Expected no expiry, got %d", req.Expires)
	}
	if req.IsExpired() {
		t.Error("Request without expiry must never expire")
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}
}

func TestParseRejectsWrongScheme(t *testing.T) {
	_, err := Parse("https://stardewvalley/mods/2400/files/9567?key=abc123")
	if !errors.Is(err, ErrInvalidScheme) {
		t.Errorf("Expected ErrInvalidScheme, got %v", err)
	}
}

func TestParseRejectsWrongGame(t *testing.T) {
	_, err := Parse("nxm://skyrim/mods/1234/files/5678?key=test")
	if err == nil {
		t.Fatal("Expected error for unsupported game")
	}

	var unsupported *UnsupportedGameError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Expected UnsupportedGameError, got %v", err)
	}
	if unsupported.Game != "skyrim" {
		t.Errorf("Expected game 'skyrim', got '%s'", unsupported.Game)
	}
}

func TestParseRejectsMissingKey(t *testing.T) {
	_, err := Parse("nxm://stardewvalley/mods/2400/files/9567")
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("Expected ErrMissingKey, got %v", err)
	}
}

func TestParseRejectsInvalidModID(t *testing.T) {
	_, err := Parse("nxm://stardewvalley/mods/abc/files/9567?key=test")
	if !errors.Is(err, ErrInvalidModID) {
		t.Errorf("Expected ErrInvalidModID, got %v", err)
	}
}

func TestParseRejectsInvalidFileID(t *testing.T) {
	_, err := Parse("nxm://stardewvalley/mods/2400/files/xyz?key=test")
	if !errors.Is(err, ErrInvalidFileID) {
		t.Errorf("Expected ErrInvalidFileID, got %v", err)
	}
}

func TestParseRejectsMalformedPath(t *testing.T) {
	urls := []string{
		"nxm://stardewvalley/mods/2400?key=test",
		"nxm://stardewvalley/files/2400/mods/9567?key=test",
		"nxm://stardewvalley/mods/2400/files/9567/extra?key=test",
	}
	for _, raw := range urls {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Expected ErrInvalidFormat for %q, got %v", raw, err)
		}
	}
}

func TestExpirationValidation(t *testing.T) {
	// Expired in the year 2000.
	req, err := Parse("nxm://stardewvalley/mods/2400/files/9567?key=test&expires=946684800")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !req.IsExpired() {
		t.Error("Expected request to be expired")
	}
	if err := req.Validate(); !errors.Is(err, ErrExpired) {
		t.Errorf("Expected ErrExpired, got %v", err)
	}

	// A request expiring well in the future validates.
	req.Expires = time.Now().Add(time.Hour).Unix()
	if err := req.Validate(); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}
}
