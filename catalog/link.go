package catalog

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrNotTrackLink = errors.New("not a Spotify track link")

var spotifyIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// ParseSpotifyTrackLink extracts the track id from an open.spotify.com
// track URL. Locale prefixes such as /intl-de/ and query strings are
// accepted.
func ParseSpotifyTrackLink(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if nil != err {
		return "", ErrNotTrackLink
	}

	switch u.Scheme {
	case "https":
	default:
		return "", ErrNotTrackLink
	}

	switch u.Host {
	case "open.spotify.com", "play.spotify.com":
	default:
		return "", ErrNotTrackLink
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 3 && strings.HasPrefix(parts[0], "intl-") {
		parts = parts[1:]
	}
	if len(parts) != 2 || parts[0] != "track" {
		return "", ErrNotTrackLink
	}
	if !spotifyIDPattern.MatchString(parts[1]) {
		return "", ErrNotTrackLink
	}
	return parts[1], nil
}

func TrackLink(id string) string {
	return "https://open.spotify.com/track/" + id
}
