package main

import (
	"github.com/urfave/cli/v2"
)

func trackFlag() cli.Flag {
	//nolint:exhaustruct
	return &cli.IntFlag{
		Name:    flagTrack,
		Aliases: []string{"t"},
		Usage:   "Track ID, defaults to the active track",
	}
}

//nolint:exhaustruct,funlen
func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "tracks",
			Usage:  "List the session tracks and their progress",
			Action: withRuntime(tracksAction),
		},
		{
			Name:      "annotator",
			Usage:     "Set the annotator name written to every track",
			ArgsUsage: "<name>",
			Action:    withRuntime(annotatorAction),
		},
		{
			Name:      "select",
			Usage:     "Make a track active, resuming where it was left",
			ArgsUsage: "<track-id>",
			Action:    withRuntime(selectAction),
		},
		{
			Name:      "phase",
			Usage:     "Move the active track to a workflow phase",
			ArgsUsage: "<select|ready|listening|global|review>",
			Action:    withRuntime(phaseAction),
		},
		{
			Name:   "next",
			Usage:  "Leave the active track and return to track selection",
			Action: withRuntime(nextAction),
		},
		{
			Name:  "timer",
			Usage: "Start or stop the listening timer",
			Subcommands: []*cli.Command{
				{Name: "start", Action: withRuntime(timerAction(true))},
				{Name: "stop", Action: withRuntime(timerAction(false))},
			},
		},
		{
			Name:  "entry",
			Usage: "Manage timeline entries of the active track",
			Subcommands: []*cli.Command{
				{
					Name:   "add",
					Usage:  "Add a timeline entry",
					Action: withRuntime(entryAddAction),
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "at", Usage: "Timestamp in M:SS", Required: true},
						&cli.StringFlag{Name: "section", Aliases: []string{"s"}, Usage: "Section type", Required: true},
						&cli.StringFlag{Name: "narrative", Aliases: []string{"n"}, Usage: "What happens in the section"},
						&cli.StringSliceFlag{Name: "tag", Usage: "Tag label, repeatable"},
						&cli.StringSliceFlag{Name: "tag-id", Usage: "Tag library ID, repeatable"},
						&cli.BoolFlag{Name: "dictated", Usage: "The narrative is a dictation transcript"},
						&cli.BoolFlag{Name: "polish", Usage: "Clean up the narrative before saving"},
					},
				},
				{
					Name:      "edit",
					Usage:     "Edit a timeline entry",
					ArgsUsage: "<entry-id>",
					Action:    withRuntime(entryEditAction),
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "at", Usage: "New timestamp in M:SS"},
						&cli.IntFlag{Name: "nudge", Usage: "Move the timestamp by this many seconds"},
						&cli.StringFlag{Name: "section", Aliases: []string{"s"}, Usage: "New section type"},
						&cli.StringFlag{Name: "narrative", Aliases: []string{"n"}, Usage: "New narrative"},
						&cli.StringSliceFlag{Name: "tag", Usage: "Replace tags, repeatable"},
						&cli.StringSliceFlag{Name: "add-tag", Usage: "Append a tag, repeatable"},
						&cli.BoolFlag{Name: "polish", Usage: "Clean up the narrative before saving"},
					},
				},
				{
					Name:      "remove",
					Usage:     "Remove a timeline entry",
					ArgsUsage: "<entry-id>",
					Action:    withRuntime(entryRemoveAction),
				},
			},
		},
		{
			Name:  "global",
			Usage: "Fill in the global analysis of the active track",
			Subcommands: []*cli.Command{
				{
					Name:   "show",
					Usage:  "Show every category with its guidance and value",
					Action: withRuntime(globalShowAction),
				},
				{
					Name:      "set",
					Usage:     "Set a category",
					ArgsUsage: "<category> <text>",
					Action:    withRuntime(globalSetAction),
					Flags: []cli.Flag{
						&cli.BoolFlag{Name: "polish", Usage: "Clean up the text before saving"},
					},
				},
				{
					Name:      "na",
					Usage:     "Mark a category as not applicable",
					ArgsUsage: "<category>",
					Action:    withRuntime(globalNAAction),
				},
			},
		},
		{
			Name:      "elapsed",
			Usage:     "Record the listening time of a track",
			ArgsUsage: "<seconds>",
			Flags:     []cli.Flag{trackFlag()},
			Action:    withRuntime(elapsedAction),
		},
		{
			Name:   "complete",
			Usage:  "Mark a track complete when it passes validation",
			Flags:  []cli.Flag{trackFlag()},
			Action: withRuntime(completeAction),
		},
		{
			Name:  "skip",
			Usage: "Skip a track",
			Flags: []cli.Flag{
				trackFlag(),
				&cli.StringFlag{Name: "reason", Aliases: []string{"r"}, Usage: "Why the track is skipped"},
			},
			Action: withRuntime(skipAction),
		},
		{
			Name:   "reset",
			Usage:  "Discard the annotation of a track and start it over",
			Flags:  []cli.Flag{trackFlag()},
			Action: withRuntime(resetAction),
		},
		{
			Name:   "lint",
			Usage:  "Validate a track annotation",
			Flags:  []cli.Flag{trackFlag()},
			Action: withRuntime(lintAction),
		},
		{
			Name:  "export",
			Usage: "Write complete and skipped tracks, or one track that passes validation, into a copy of the workbook template",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: flagTrack, Aliases: []string{"t"}, Usage: "Export only this track, refused while it has blocking issues"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file, defaults to a generated name in the export directory"},
			},
			Action: withRuntime(exportAction),
		},
		{
			Name:  "tags",
			Usage: "Manage the tag vocabulary",
			Subcommands: []*cli.Command{
				{
					Name:      "import",
					Usage:     "Import tag pack files, or the configured ones when none are given",
					ArgsUsage: "[file...]",
					Action:    withRuntime(tagsImportAction),
				},
				{
					Name:   "list",
					Usage:  "List tags offered for a track",
					Action: withRuntime(tagsListAction),
					Flags: []cli.Flag{
						trackFlag(),
						&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Filter by label, category or type"},
						&cli.BoolFlag{Name: "all", Usage: "List the whole library instead of the session tags"},
						&cli.BoolFlag{Name: "hidden", Usage: "List hidden builtin tags"},
					},
				},
				{
					Name:      "add",
					Usage:     "Add a custom tag",
					ArgsUsage: "<label>",
					Action:    withRuntime(tagsAddAction),
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "type", Value: "custom", Usage: "Tag type"},
						&cli.StringFlag{Name: "category", Value: "Custom", Usage: "Tag category"},
					},
				},
				{
					Name:      "enable",
					Usage:     "Enable a tag pack",
					ArgsUsage: "<pack-id>",
					Action:    withRuntime(tagsPackAction(true)),
				},
				{
					Name:      "disable",
					Usage:     "Disable a tag pack",
					ArgsUsage: "<pack-id>",
					Action:    withRuntime(tagsPackAction(false)),
				},
				{
					Name:      "hide",
					Usage:     "Hide a builtin tag, or hide any tag for one track with --track",
					ArgsUsage: "<tag-id>",
					Flags:     []cli.Flag{&cli.IntFlag{Name: flagTrack, Aliases: []string{"t"}, Usage: "Hide for this track only"}},
					Action:    withRuntime(tagsHideAction),
				},
				{
					Name:      "restore",
					Usage:     "Restore a hidden builtin tag",
					ArgsUsage: "<tag-id>",
					Action:    withRuntime(tagsRestoreAction),
				},
				{
					Name:      "section",
					Usage:     "Add a custom section type",
					ArgsUsage: "<name>",
					Action:    withRuntime(tagsSectionAction),
				},
			},
		},
		{
			Name:  "phrase",
			Usage: "Build a narrative sentence from who, what, where and when",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "who", Required: true},
				&cli.StringFlag{Name: "what", Required: true},
				&cli.StringFlag{Name: "where"},
				&cli.StringFlag{Name: "when"},
				&cli.IntFlag{Name: "variant", Usage: "Template variant"},
				&cli.BoolFlag{Name: "all", Usage: "Print every variant"},
			},
			Action: phraseAction,
		},
		{
			Name:      "polish",
			Usage:     "Clean up rough notes without saving them",
			ArgsUsage: "<text>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "section", Aliases: []string{"s"}, Usage: "Section type of a timeline note"},
				&cli.StringFlag{Name: "at", Usage: "Timestamp of a timeline note"},
				&cli.StringFlag{Name: "category", Usage: "Global category of the note"},
			},
			Action: withRuntime(polishAction),
		},
		{
			Name:  "session",
			Usage: "Inspect or discard the saved session",
			Subcommands: []*cli.Command{
				{
					Name:   "show",
					Usage:  "Show the session state",
					Action: withRuntime(sessionShowAction),
				},
				{
					Name:   "discard",
					Usage:  "Delete the saved session",
					Flags:  []cli.Flag{&cli.BoolFlag{Name: "yes", Usage: "Confirm"}},
					Action: withRuntime(sessionDiscardAction),
				},
			},
		},
	}
}
