package nxm

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Scheme is the custom URL scheme registered with the OS for Nexus Mods
// "Mod Manager Download" buttons.
const Scheme = "nxm"

// SupportedGame is the only game domain this manager handles.
const SupportedGame = "stardewvalley"

// Parse/validation errors.
var (
	ErrInvalidScheme = errors.New("invalid URL scheme (expected nxm://)")
	ErrInvalidFormat = errors.New("invalid NXM URL format")
	ErrMissingKey    = errors.New("missing authentication key")
	ErrInvalidModID  = errors.New("invalid mod ID format")
	ErrInvalidFileID = errors.New("invalid file ID format")
	ErrExpired       = errors.New("download link has expired, request a fresh one from Nexus Mods")
)

// UnsupportedGameError reports an nxm URL for a game this manager does not handle.
type UnsupportedGameError struct {
	Game string
}

func (e *UnsupportedGameError) Error() string {
	return fmt.Sprintf("game not supported: %s", e.Game)
}

// Request is a parsed nxm:// download request.
//
// Format: nxm://stardewvalley/mods/{modID}/files/{fileID}?key={key}&expires={unix}&user_id={id}
// Expires and UserID are optional; zero means absent.
type Request struct {
	Game    string `json:"game"`
	ModID   int64  `json:"modId"`
	FileID  int64  `json:"fileId"`
	Key     string `json:"key"`
	Expires int64  `json:"expires,omitempty"`
	UserID  int64  `json:"userId,omitempty"`
}

// Parse parses a raw nxm:// URL into a Request.
func Parse(raw string) (*Request, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if u.Scheme != Scheme {
		return nil, ErrInvalidScheme
	}

	game := u.Host
	if game == "" {
		return nil, ErrInvalidFormat
	}
	if game != SupportedGame {
		return nil, &UnsupportedGameError{Game: game}
	}

	// Path layout: /mods/{modID}/files/{fileID}
	segments := splitPath(u.Path)
	if len(segments) != 4 || segments[0] != "mods" || segments[2] != "files" {
		return nil, ErrInvalidFormat
	}

	modID, err := strconv.ParseInt(segments[1], 10, 64)
	if err != nil || modID < 0 {
		return nil, ErrInvalidModID
	}

	fileID, err := strconv.ParseInt(segments[3], 10, 64)
	if err != nil || fileID < 0 {
		return nil, ErrInvalidFileID
	}

	query := u.Query()

	key := query.Get("key")
	if key == "" {
		return nil, ErrMissingKey
	}

	req := &Request{
		Game:   game,
		ModID:  modID,
		FileID: fileID,
		Key:    key,
	}

	// Unknown or malformed optional parameters are ignored.
	if v := query.Get("expires"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.Expires = n
		}
	}
	if v := query.Get("user_id"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.UserID = n
		}
	}

	return req, nil
}

// IsExpired reports whether the request's signed key has passed its expiry.
// A request without an expiry never expires.
func (r *Request) IsExpired() bool {
	if r.Expires == 0 {
		return false
	}
	return r.Expires < time.Now().Unix()
}

// Validate checks constraints that go beyond URL shape, currently expiry only.
func (r *Request) Validate() error {
	if r.IsExpired() {
		return ErrExpired
	}
	return nil
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
