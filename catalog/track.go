package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Track is a catalog entry. Tracks are immutable once the catalog is built.
type Track struct {
	ID         int    `json:"id"         yaml:"id"`
	Artist     string `json:"artist"     yaml:"artist"`
	Title      string `json:"name"       yaml:"title"`
	SpotifyID  string `json:"spotifyId"  yaml:"spotify_id"`
	SpotifyURL string `json:"spotifyUrl" yaml:"spotify_url"`
	// SheetName is the worksheet the track is exported to.
	SheetName  string `json:"sheetName"  yaml:"sheet_name"`
	AudioLabel string `json:"audioLabel" yaml:"audio_label"`
}

func (t Track) Label() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

type Catalog struct {
	tracks []Track
}

// Default is the session catalog the bundled template is laid out for.
func Default() *Catalog {
	c, err := New([]Track{
		{
			ID:         1,
			Artist:     "C. Tangana",
			Title:      "Nunca Estoy",
			SpotifyID:  "6N4ioa3XSbvjmwdVEERl8F",
			SpotifyURL: TrackLink("6N4ioa3XSbvjmwdVEERl8F"),
			SheetName:  "Track 1",
		},
		{
			ID:         2,
			Artist:     "Izi",
			Title:      "Chic",
			SpotifyID:  "7jUJ2RmT4PFHHq4goMWqm3",
			SpotifyURL: TrackLink("7jUJ2RmT4PFHHq4goMWqm3"),
			SheetName:  "Track 2",
		},
		{
			ID:         3,
			Artist:     "Solomon Ray",
			Title:      "Find Your Rest",
			SpotifyID:  "3XZMl51zqZDdAb0rwzSuxz",
			SpotifyURL: TrackLink("3XZMl51zqZDdAb0rwzSuxz"),
			SheetName:  "Track 3",
		},
	})
	if nil != err {
		panic(fmt.Sprintf("invalid default catalog: %v", err))
	}
	return c
}

// New validates tracks and fills in whichever of SpotifyID and SpotifyURL
// is missing.
func New(tracks []Track) (*Catalog, error) {
	if len(tracks) == 0 {
		return nil, errors.New("catalog has no tracks")
	}

	out := make([]Track, len(tracks))
	for i, t := range tracks {
		if t.ID <= 0 {
			return nil, fmt.Errorf("track %d: id must be positive", i+1)
		}
		if strings.TrimSpace(t.SheetName) == "" {
			return nil, fmt.Errorf("track %d: sheet name is empty", t.ID)
		}
		switch {
		case t.SpotifyID == "" && t.SpotifyURL != "":
			id, err := ParseSpotifyTrackLink(t.SpotifyURL)
			if nil != err {
				return nil, fmt.Errorf("track %d: %v", t.ID, err)
			}
			t.SpotifyID = id
		case t.SpotifyID != "" && t.SpotifyURL == "":
			t.SpotifyURL = TrackLink(t.SpotifyID)
		}
		out[i] = t
	}

	if dup := lo.FindDuplicatesBy(out, func(t Track) int { return t.ID }); len(dup) > 0 {
		return nil, fmt.Errorf("duplicate track id %d", dup[0].ID)
	}
	if dup := lo.FindDuplicatesBy(out, func(t Track) string { return t.SheetName }); len(dup) > 0 {
		return nil, fmt.Errorf("duplicate sheet name %q", dup[0].SheetName)
	}

	slices.SortFunc(out, func(a, b Track) int { return a.ID - b.ID })
	return &Catalog{tracks: out}, nil
}

func (c *Catalog) Tracks() []Track {
	return slices.Clone(c.tracks)
}

func (c *Catalog) ByID(id int) (Track, bool) {
	return lo.Find(c.tracks, func(t Track) bool { return t.ID == id })
}
