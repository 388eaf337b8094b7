package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect archived reports",
	Long:  "Commands for listing, viewing, exporting and importing archived reports and comparisons.",
}

// -- history list --

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zip, _ := cmd.Flags().GetString("zip")
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")

		reports, err := st.ListReports(ctx, store.ReportFilter{ZipCode: zip, Kind: kind, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "history list")
		}

		if len(reports) == 0 {
			fmt.Fprintln(os.Stderr, "No archived reports found.")
			return nil
		}

		formatHistoryList(cmd.OutOrStdout(), reports)
		return nil
	},
}

// -- history show --

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an archived report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		r, err := st.GetReport(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "history show")
		}
		return writeOutput(cmd.OutOrStdout(), r)
	},
}

// -- history export --

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived reports as JSON lines",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		reports, err := st.ListReports(ctx, store.ReportFilter{Limit: limit})
		if err != nil {
			return eris.Wrap(err, "history export")
		}

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return eris.Wrap(err, "history export: create file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return writeJSONLines(out, reports)
	},
}

// -- history import --

var historyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import reports exported by history export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrap(err, "history import: open file")
		}
		defer f.Close() //nolint:errcheck

		reports, err := readJSONLines(f)
		if err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.ImportReports(ctx, reports)
		if err != nil {
			return eris.Wrap(err, "history import")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d reports.\n", n, len(reports))
		return nil
	},
}

func init() {
	historyListCmd.Flags().String("zip", "", "filter by ZIP code")
	historyListCmd.Flags().String("kind", "", "filter by kind (report, comparison)")
	historyListCmd.Flags().Int("limit", store.DefaultListLimit, "max number of reports to display")

	historyExportCmd.Flags().Int("limit", 1000, "max number of reports to export")
	historyExportCmd.Flags().String("out", "", "output file (default stdout)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
	rootCmd.AddCommand(historyCmd)
}

// formatHistoryList writes a tabular list of archived reports to out.
func formatHistoryList(out io.Writer, reports []model.ArchivedReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tZIP_CODES\tCREATED")
	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.ID, r.Kind, strings.Join(r.ZipCodes, ","), r.CreatedAt.UTC().Format(time.RFC3339))
	}
	_ = w.Flush()
}

func writeJSONLines(out io.Writer, reports []model.ArchivedReport) error {
	enc := json.NewEncoder(out)
	for i := range reports {
		if err := enc.Encode(&reports[i]); err != nil {
			return eris.Wrapf(err, "encode report %s", reports[i].ID)
		}
	}
	return nil
}

// maxLine bounds one exported report line.
const maxLine = 16 << 20

func readJSONLines(in io.Reader) ([]model.ArchivedReport, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLine)

	var reports []model.ArchivedReport
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var r model.ArchivedReport
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, eris.Wrapf(err, "decode line %d", line)
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(scanner.Err(), "read reports")
}
