package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/scan/claude"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/service"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/store"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/web"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "medtrack",
		Short:         "Track medicine inventory and expiry dates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newExpiringCmd(a),
		newExpiredCmd(a),
		newFindCmd(a),
		newRemoveCmd(a),
		newExportCmd(a),
		newScanCmd(a),
		newServeCmd(a),
	)
	return root
}

func newAddCmd(a *app) *cobra.Command {
	var in store.AddInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medicine",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.tracker.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added: %s", rec.Name)
			if rec.Strength != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", rec.Strength)
			}
			fmt.Fprintf(cmd.OutOrStdout(), " — expiry=%s\n", rec.Expiry)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "medicine name (required)")
	cmd.Flags().StringVar(&in.Strength, "strength", "", "e.g. 500mg")
	cmd.Flags().StringVar(&in.Form, "form", "", "e.g. tablet, syrup")
	cmd.Flags().StringVar(&in.Batch, "batch", "", "batch number")
	cmd.Flags().StringVar(&in.Expiry, "expiry", "", "expiry date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&in.Location, "location", "", "storage location")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("expiry")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all medicines, soonest expiry first",
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.tracker.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(col) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No medicines yet. Use 'add' to add your first one.")
				return nil
			}
			printMedicines(cmd, col)
			return nil
		},
	}
}

func newExpiringCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List medicines expiring within N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.tracker.Expiring(cmd.Context(), days)
			if err != nil {
				return err
			}
			if len(col) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No medicines expiring in the next %d days.\n", days)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expiring in the next %d days:\n", days)
			printMedicines(cmd, col)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", service.DefaultExpiryWindowDays, "window length in days")
	return cmd
}

func newExpiredCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expired",
		Short: "List medicines already past their expiry date",
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.tracker.Expired(cmd.Context())
			if err != nil {
				return err
			}
			if len(col) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No expired medicines.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Expired medicines:")
			printMedicines(cmd, col)
			return nil
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	var q string
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search medicines by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.tracker.Find(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(col) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			printMedicines(cmd, col)
			return nil
		},
	}
	cmd.Flags().StringVar(&q, "query", "", "name substring (required)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a medicine by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.tracker.Remove(cmd.Context(), name)
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Medicine not found.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%d record(s)).\n", name, removed)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "exact medicine name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all medicines to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			n, err := a.tracker.ExportCSV(cmd.Context(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d medicines to %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "csv", "", "destination file (required)")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func newScanCmd(a *app) *cobra.Command {
	var addAfter bool
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Read a medicine box photo and propose a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.ClaudeAPIKey == "" {
				return fmt.Errorf("scan requires CLAUDE_API_KEY to be set")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer func() { _ = f.Close() }()

			scanner := claude.NewLabelScanner(a.cfg.ClaudeAPIKey, a.cfg.ClaudeModel)
			result, err := scanner.Scan(cmd.Context(), f, mimeFromPath(args[0]))
			if err != nil {
				return err
			}
			label := result.Label
			if label.Name == "" {
				return fmt.Errorf("could not read a medicine name from %s", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Scanned: %s | %s | %s | %s\n",
				label.Name, label.Strength, label.Form, label.Expiry)

			if !addAfter {
				return nil
			}
			rec, err := a.tracker.Add(cmd.Context(), store.AddInput{
				Name:     label.Name,
				Strength: label.Strength,
				Form:     label.Form,
				Expiry:   label.Expiry,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added: %s — expiry=%s\n", rec.Name, rec.Expiry)
			return nil
		},
	}
	cmd.Flags().BoolVar(&addAfter, "add", false, "add the scanned medicine after a successful scan")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := web.NewServer(a.tracker, a.logger)
			return server.ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", a.cfg.ListenAddr, "listen address")
	return cmd
}

func printMedicines(cmd *cobra.Command, col []domain.Medicine) {
	for _, m := range col {
		fmt.Fprintln(cmd.OutOrStdout(), formatMedicine(m))
	}
}

// formatMedicine renders one record as a list line, e.g.
// "- Paracetamol (500mg) tablet — batch=B1, expiry=2026-03-01, loc=shelf A".
func formatMedicine(m domain.Medicine) string {
	core := m.Name
	if m.Strength != "" {
		core += fmt.Sprintf(" (%s)", m.Strength)
	}
	if m.Form != "" {
		core += " " + m.Form
	}

	var extra []string
	if m.Batch != "" {
		extra = append(extra, "batch="+m.Batch)
	}
	if m.Expiry != "" {
		extra = append(extra, "expiry="+m.Expiry)
	}
	if m.Location != "" {
		extra = append(extra, "loc="+m.Location)
	}
	if len(extra) == 0 {
		return "- " + core
	}
	return "- " + core + " — " + strings.Join(extra, ", ")
}

func mimeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
