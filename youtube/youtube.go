// Package youtube recognizes well-known video URL shapes and maps them to
// thumbnail URLs without a network call. Recognition is deliberately a closed
// set: a URL that is not unambiguously a single video (home pages, channels,
// search listings) yields no thumbnail so a generic metadata fetch can supply
// a correct preview instead of a misleading banner.
//
// All functions are pure and total; parse failures map to ok=false.
package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

// Video identifiers are an 11-character base64url-style token.
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

const thumbnailHost = "https://img.youtube.com/vi/"

// VideoID extracts the video identifier from watch pages, short links,
// shorts and embed paths. ok is false for every other URL shape and for
// identifiers that do not match the strict token syntax.
func VideoID(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())

	var id string
	switch {
	case host == "youtu.be":
		id = firstSegment(u.Path)
	case isYouTubeHost(host):
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/shorts"))
		case strings.HasPrefix(u.Path, "/embed/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/embed"))
		}
	}

	if !validID.MatchString(id) {
		return "", false
	}
	return id, true
}

// ThumbnailURL maps a recognized video URL directly to its hqdefault
// thumbnail.
func ThumbnailURL(raw string) (string, bool) {
	id, ok := VideoID(raw)
	if !ok {
		return "", false
	}
	return thumbnailHost + id + "/hqdefault.jpg", true
}

// IsChannelURL reports whether raw points at a channel or listing page
// rather than a single video. Callers use this to suppress images fetched
// from the generic endpoint, which would otherwise show a channel banner.
func IsChannelURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if !isYouTubeHost(host) {
		return false
	}
	p := u.Path
	return strings.HasPrefix(p, "/@") ||
		strings.HasPrefix(p, "/channel/") ||
		strings.HasPrefix(p, "/c/") ||
		strings.HasPrefix(p, "/user/")
}

func isYouTubeHost(host string) bool {
	return host == "youtube.com" || host == "www.youtube.com" || host == "m.youtube.com"
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
