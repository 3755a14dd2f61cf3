package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/clinic/clinic/internal/domain/assessment"
	"github.com/clinic/clinic/internal/domain/questionnaire"
	"github.com/clinic/clinic/internal/platform/db"
)

func levelColor(l assessment.RiskLevel) *color.Color {
	switch l {
	case assessment.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case assessment.RiskMedium:
		return color.New(color.FgYellow)
	case assessment.RiskLow:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgGreen)
	}
}

func renderStatistics(w io.Writer, s *questionnaire.Statistics) {
	color.New(color.FgCyan).Fprintln(w, "Completed questionnaires by risk level")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Risk Level", "Questionnaires"})
	for i := len(assessment.Levels) - 1; i >= 0; i-- {
		l := assessment.Levels[i]
		table.Append([]string{string(l), strconv.Itoa(s.ByRiskLevel[l])})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(s.Total)})
	table.Render()
}

func renderRecompute(w io.Writer, r *questionnaire.RecomputeReport) {
	mode := "applied"
	if r.DryRun {
		mode = "dry run"
	}
	color.New(color.FgCyan).Fprintf(w, "Risk recompute (%s): scanned %d, changed %d\n", mode, r.Scanned, len(r.Changes))

	if len(r.Changes) == 0 {
		color.New(color.FgGreen).Fprintln(w, "All risk levels are current.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Questionnaire", "Patient", "From", "To"})
	for _, ch := range r.Changes {
		table.Append([]string{
			strconv.FormatInt(ch.QuestionnaireID, 10),
			strconv.FormatInt(ch.PatientID, 10),
			string(ch.From),
			levelColor(ch.To).Sprint(string(ch.To)),
		})
	}
	table.Render()

	if r.DryRun {
		color.New(color.FgYellow).Fprintln(w, "Nothing was written. Re-run without --dry-run to apply.")
	}
}

func renderMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Version", "Name", "Status", "Applied At"})
	pending := 0
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		} else {
			pending++
		}
		table.Append([]string{strconv.Itoa(s.Version), s.Name, status, appliedAt})
	}
	table.Render()

	if pending > 0 {
		color.New(color.FgYellow).Fprintln(w, fmt.Sprintf("%d migration(s) pending", pending))
	}
}
