package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"voicejudge/internal/archive"
	"voicejudge/internal/faults"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize archived sessions by condition",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Experiment.ArchiveEnabled {
				return faults.Wrap(faults.ErrConfiguration, "cli", "stats", "archive_enabled is false", nil)
			}
			store, err := archive.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.Summaries(cmd.Context())
			if err != nil {
				return err
			}
			sessions, err := store.ListSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintf(out, "No sessions archived in %s\n", store.Path())
				return nil
			}
			fmt.Fprintln(out, renderSummaryTable(summaries))
			fmt.Fprintln(out, renderSessionTable(sessions))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of recent sessions to list (0 for all)")
	return cmd
}

func renderSummaryTable(summaries []archive.ConditionSummary) string {
	view := tableView{
		title: "Responses by condition",
		columns: []column{
			{"Condition", alignLeft},
			{"Trials", alignRight},
			{"Accuracy %", alignRight},
			{"Mean RT", alignRight},
			{"Median RT", alignRight},
			{"SD RT", alignRight},
			{"Confidence", alignRight},
			{"Naturalness", alignRight},
		},
	}
	trials := 0
	var correct float64
	for _, s := range summaries {
		view.addRow(
			string(s.Condition),
			strconv.Itoa(s.Trials),
			formatFloat(s.Accuracy, 1),
			formatFloat(s.MeanRT, 3),
			formatFloat(s.MedianRT, 3),
			formatFloat(s.StdRT, 3),
			formatFloat(s.MeanConfidence, 2),
			formatFloat(s.MeanNaturalness, 2),
		)
		trials += s.Trials
		correct += s.Accuracy * float64(s.Trials) / 100
	}
	if trials > 0 {
		view.footer = []string{"all", strconv.Itoa(trials), formatFloat(100*correct/float64(trials), 1)}
	}
	return view.render()
}

func renderSessionTable(sessions []archive.SessionInfo) string {
	view := tableView{
		title: "Recent sessions",
		columns: []column{
			{"Started", alignLeft},
			{"Participant", alignLeft},
			{"Trials", alignRight},
			{"Accuracy %", alignRight},
			{"Aborted", alignLeft},
			{"Session", alignLeft},
		},
	}
	for _, s := range sessions {
		view.addRow(
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.ParticipantID,
			fmt.Sprintf("%d/%d", s.TrialsCompleted, s.TrialsPlanned),
			formatFloat(s.Accuracy(), 1),
			yesNo(s.Aborted),
			s.ID,
		)
	}
	return view.render()
}
