package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/internal/services"
	"github.com/kubev2v/taskengine/internal/store"
	"github.com/kubev2v/taskengine/internal/util"
)

const historySheet = "History"

type historyOptions struct {
	*rootOptions
	outcomes []string
	name     string
	since    time.Duration
	limit    uint64
	output   string
	out      string
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	opts := &historyOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the journal of finished tasks",
	}
	cmd.PersistentFlags().StringSliceVar(&opts.outcomes, "outcome", nil, "only tasks with these outcomes: completed, abandoned, panicked")
	cmd.PersistentFlags().StringVar(&opts.name, "name", "", "only tasks whose name starts with this prefix")
	cmd.PersistentFlags().DurationVar(&opts.since, "since", 0, "only tasks finished within this duration")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the journal as a table or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.list(cmd)
		},
	}
	list.Flags().Uint64Var(&opts.limit, "limit", 20, "maximum number of records, 0 for all")
	list.Flags().StringVarP(&opts.output, "output", "o", "table", "output format: table or yaml")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the journal to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.export(cmd)
		},
	}
	export.Flags().StringVar(&opts.out, "out", "history.xlsx", "path of the workbook to write")

	cmd.AddCommand(list, export)

	return cmd
}

// query opens the configured database, migrates it and returns the matching records.
func (o *historyOptions) query(cmd *cobra.Command, limit uint64) ([]models.TaskRecord, int, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, 0, err
	}
	if cfg.Store.Path == store.MemoryPath {
		zap.S().Named("history").Warn("history is read from an in-memory database, it is always empty")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(ctx, cfg.Store.Path)
	if err != nil {
		return nil, 0, err
	}
	defer closeStore(st)

	params := services.HistoryListParams{
		Outcomes:   o.outcomes,
		NamePrefix: o.name,
		Limit:      limit,
	}
	if o.since > 0 {
		params.Since = time.Now().Add(-o.since)
	}

	res, err := services.NewHistoryService(st).List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Total, nil
}

func (o *historyOptions) list(cmd *cobra.Command) error {
	records, total, err := o.query(cmd, o.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch o.output {
	case "table":
		if err := renderHistoryTable(out, records); err != nil {
			return err
		}
		if len(records) < total {
			fmt.Fprintf(out, "showing %d of %d records\n", len(records), total)
		}
		return nil
	case "yaml":
		return renderHistoryYAML(out, records)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}

func (o *historyOptions) export(cmd *cobra.Command) error {
	records, _, err := o.query(cmd, 0)
	if err != nil {
		return err
	}

	if err := writeHistoryWorkbook(o.out, records); err != nil {
		return err
	}

	green.Fprint(cmd.OutOrStdout(), "OK   ")
	fmt.Fprintf(cmd.OutOrStdout(), "%d records written to %s\n", len(records), o.out)
	return nil
}

func renderHistoryTable(out io.Writer, records []models.TaskRecord) error {
	table := tablewriter.NewWriter(out)
	table.Header("ID", "Name", "Outcome", "Worker", "Resumes", "Duration", "Finished", "Error")

	for _, r := range records {
		_ = table.Append(
			util.ShortID(r.ID),
			r.Name,
			r.Outcome.Value(),
			workerLabel(r.Worker),
			fmt.Sprintf("%d", r.Resumes),
			r.Duration().Round(time.Millisecond).String(),
			r.FinishedAt.Format(time.RFC3339),
			r.Error,
		)
	}

	return table.Render()
}

type historyEntry struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Outcome     string    `yaml:"outcome"`
	Worker      int       `yaml:"worker"`
	Resumes     int64     `yaml:"resumes"`
	ScheduledAt time.Time `yaml:"scheduledAt"`
	FinishedAt  time.Time `yaml:"finishedAt"`
	Error       string    `yaml:"error,omitempty"`
}

func renderHistoryYAML(out io.Writer, records []models.TaskRecord) error {
	entries := make([]historyEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, historyEntry{
			ID:          r.ID,
			Name:        r.Name,
			Outcome:     r.Outcome.Value(),
			Worker:      r.Worker,
			Resumes:     r.Resumes,
			ScheduledAt: r.ScheduledAt,
			FinishedAt:  r.FinishedAt,
			Error:       r.Error,
		})
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func writeHistoryWorkbook(path string, records []models.TaskRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return err
	}

	header := []any{"ID", "Name", "Outcome", "Worker", "Resumes", "Scheduled", "Finished", "Duration (ms)", "Error"}
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(historySheet, 1, 1, style); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.ID,
			r.Name,
			r.Outcome.Value(),
			r.Worker,
			r.Resumes,
			r.ScheduledAt.Format(time.RFC3339),
			r.FinishedAt.Format(time.RFC3339),
			r.Duration().Milliseconds(),
			r.Error,
		}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func workerLabel(worker int) string {
	if worker < 0 {
		return "-"
	}
	return fmt.Sprintf("%d", worker)
}
