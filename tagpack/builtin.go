package tagpack

import (
	"slices"
)

func BuiltinPacks() []Pack {
	return []Pack{
		{ID: "general", Label: "General", Description: "Core annotation tags for any genre: sections, sources, actions, qualities, mix and timing.", Version: 1, Builtin: true},
		{ID: "dnb", Label: "DnB / Jungle", Description: "Drum & bass and jungle terms for grooves, bass design and arrangement.", Version: 1, Builtin: true},
		{ID: "house", Label: "House", Description: "House music tags for groove, harmony, arrangement and mix.", Version: 1, Builtin: true},
		{ID: "trap", Label: "Hip-Hop / Trap", Description: "Hip-hop and trap production terms for rhythm, vocal arrangement and mix.", Version: 1, Builtin: true},
	}
}

type group struct {
	pack     string
	typ      Type
	category string
	labels   []string
}

var builtinGroups = []group{
	{"general", TypeSection, "Sections", []string{"Intro", "Verse", "Pre-Chorus", "Chorus", "Bridge", "Breakdown", "Build", "Drop", "Outro", "Turnaround", "Transition", "Fill", "Instrumental", "Hook", "Post-Chorus", "Tag Ending", "Solo"}},
	{"general", TypeSource, "Sources", []string{"Kick", "Snare", "Clap", "Hats", "Percussion", "Bass", "Sub", "Lead", "Pad", "Chords", "Arp", "FX", "Vocal Lead", "Backing Vocal", "Guitar", "Keys", "Ambience", "Strings", "Brass", "Rhodes"}},
	{"general", TypeAction, "Actions", []string{"Enters", "Drops Out", "Doubles", "Builds", "Resolves", "Swells", "Cuts Through", "Masks", "Clips", "Distorts", "Widens", "Narrows", "Drags", "Pushes", "Tightens", "Repeats", "Call-Response"}},
	{"general", TypeQuality, "Qualities", []string{"Tight", "Loose", "Swung", "Straight", "Syncopated", "Driving", "Laid-back", "Punchy", "Warm", "Bright", "Dark", "Gritty", "Clean", "Airy", "Dense", "Sparse"}},
	{"general", TypeMix, "Mix & Space", []string{"Muddy", "Boxy", "Harsh", "Buried", "Upfront", "Mono", "Stereo-wide", "Dry", "Wet", "Reverb-heavy", "Delay-heavy", "Sidechained", "Low-end Clash", "Transient-heavy"}},
	{"general", TypeTiming, "Timing", []string{"On Beat", "Offbeat", "Before Drop", "After Fill", "Transition Point", "Late", "Early", "Bar Marker"}},

	{"dnb", TypeGenreMarker, "Drums & Groove", []string{"Breakbeat", "Amen", "Break Chop", "Ghost Snare", "Shuffle Hats", "Roller", "Halftime Feel", "Double-time Hats", "Snare Crack"}},
	{"dnb", TypeGenreMarker, "Bass", []string{"Reese", "Sub Pressure", "Wobble", "Neuro Bass", "Foghorn", "Growl", "Mid-bass", "Sub Drop"}},
	{"dnb", TypeSection, "Arrangement", []string{"DJ Intro", "First Drop", "Switch-up", "Second Drop", "Bassless Outro", "16-bar Section"}},
	{"dnb", TypeMix, "Mix & Energy", []string{"Low-end Clash", "Bass Masking", "Transient Punch", "Headroom Issue"}},

	{"house", TypeGenreMarker, "Groove & Drums", []string{"Four-on-the-floor", "Offbeat Hat", "Shuffle", "Groove Loop", "Jackin Feel", "Driving Kick"}},
	{"house", TypeGenreMarker, "Harmony & Bass", []string{"Bassline Groove", "Chord Stab", "Organ Stab", "Piano House", "Vamp", "Filtered Chords"}},
	{"house", TypeSection, "Arrangement", []string{"DJ Intro", "Beatless Breakdown", "Buildup", "Tension Ramp", "Riser", "Sweep", "Filter-in", "Filter-out"}},
	{"house", TypeMix, "Mix & Motion", []string{"Sidechain Pump", "Kick-bass Ducking", "Mono Kick", "Wide Hats", "Sub Focus"}},

	{"trap", TypeGenreMarker, "Rhythm", []string{"808", "Half-time Feel", "Hat Rolls", "Triplet Hats", "Clap Stack", "Snare Pocket", "Bounce"}},
	{"trap", TypeGenreMarker, "Production", []string{"Sparse Beat", "Sample Chop", "Reverse Hit", "Pitch Shift", "Drop-out"}},
	{"trap", TypeGenreMarker, "Vocal & Arrangement", []string{"Hook", "Adlibs", "Doubles", "Punch-in", "Beat Switch"}},
	{"trap", TypeMix, "Mix", []string{"Vocal Forward", "Low-end Heavy", "Grit", "Air", "Mono Compatibility"}},
}

// BuiltinTags returns the seed vocabulary. A label shared by several packs
// is one tag carrying all their pack ids; the first group defines its type
// and category.
func BuiltinTags() []Tag {
	var out []Tag
	index := make(map[string]int)
	for _, g := range builtinGroups {
		for _, label := range g.labels {
			id := "builtin_" + slug(label)
			if i, ok := index[id]; ok {
				if !slices.Contains(out[i].PackIDs, g.pack) {
					out[i].PackIDs = append(out[i].PackIDs, g.pack)
				}
				continue
			}
			index[id] = len(out)
			out = append(out, Tag{
				ID:         id,
				Label:      label,
				Normalized: Normalize(label),
				Type:       g.typ,
				Category:   g.category,
				Source:     SourceBuiltin,
				PackIDs:    []string{g.pack},
			})
		}
	}
	return out
}
