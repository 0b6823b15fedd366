package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	appthreats "github.com/bryanwahyu/threatlens/internal/application/threats"
	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
	"github.com/bryanwahyu/threatlens/internal/infra/ai/prompt"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		cmdIn  appthreats.AnalyzeCommand
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [query]",
		Short: "Analyze a threat question and store the result",
		Example: `  threatctl analyze "What is the attack vector for Volt Typhoon?"
  threatctl analyze --template attack_vector --param threat_actor="Volt Typhoon"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmdIn
			in.Query = strings.Join(args, " ")
			if in.Template == "" && strings.TrimSpace(in.Query) == "" {
				return fmt.Errorf("either a query argument or --template is required")
			}
			return opts.withService(cmd, func(svc *appthreats.Service) error {
				rec, err := svc.Analyze(cmd.Context(), in)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				printRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&cmdIn.Template, "template", "", "template key (see `threatctl templates`)")
	f.StringToStringVar(&cmdIn.Params, "param", nil, "template parameter, repeatable (name=value)")
	f.StringVar(&cmdIn.TTP, "ttp", "", "MITRE technique to tag the record with")
	f.StringVar(&cmdIn.ThreatActor, "actor", "", "threat actor to tag the record with")
	f.StringVar(&cmdIn.TargetSector, "sector", "", "target sector to tag the record with")
	f.BoolVar(&asJSON, "json", false, "print the stored record as JSON")
	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(svc *appthreats.Service) error {
				res, err := svc.History(cmd.Context(), page, size)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(res.Data) == 0 {
					fmt.Fprintln(out, "no analyses stored")
					return nil
				}
				for _, rec := range res.Data {
					attack := rec.Tags.AttackType
					if attack == "" {
						attack = appthreats.Unclassified
					}
					fmt.Fprintf(out, "%s  %s  %-8s  %-12s  %s\n",
						rec.ID, rec.Timestamp.Format("2006-01-02 15:04"), rec.Tags.Severity, attack, rec.Query)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "page-size", 20, "records per page")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(svc *appthreats.Service) error {
				rec, err := svc.Get(cmd.Context(), domain.RecordID(args[0]))
				if err != nil {
					return err
				}
				printRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print severity and attack-type counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(svc *appthreats.Service) error {
				s, err := svc.Summary(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "total: %d\n", s.Total)
				for i := len(domain.Severities) - 1; i >= 0; i-- {
					sev := domain.Severities[i]
					fmt.Fprintf(out, "  %-8s %d\n", sev, s.BySeverity[sev])
				}
				attacks := make([]string, 0, len(s.ByAttackType))
				for attack := range s.ByAttackType {
					attacks = append(attacks, attack)
				}
				sort.Strings(attacks)
				for _, attack := range attacks {
					fmt.Fprintf(out, "  %-12s %d\n", attack, s.ByAttackType[attack])
				}
				return nil
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every stored analysis as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := appthreats.ParseFormat(format)
			if err != nil {
				return err
			}
			return opts.withService(cmd, func(svc *appthreats.Service) error {
				data, err := svc.Export(cmd.Context(), f)
				if err != nil {
					return err
				}
				if outPath == "" || outPath == "-" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(data), outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List query templates and sample questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Templates:")
			for _, t := range prompt.Templates() {
				fmt.Fprintf(out, "  %-18s %s\n", t.Key, t.Description)
				fmt.Fprintf(out, "  %-18s %s (params: %s)\n", "", t.Template, strings.Join(t.Params, ", "))
			}
			fmt.Fprintln(out, "\nSample queries:")
			for _, q := range prompt.SampleQueries {
				fmt.Fprintf(out, "  - %s\n", q)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecord(w io.Writer, rec *domain.AnalysisRecord) {
	fmt.Fprintf(w, "ID:        %s\n", rec.ID)
	fmt.Fprintf(w, "Query:     %s\n", rec.Query)
	fmt.Fprintf(w, "Severity:  %s\n", rec.Tags.Severity)
	if rec.Tags.AttackType != "" {
		fmt.Fprintf(w, "Attack:    %s\n", rec.Tags.AttackType)
	}

	r := rec.Report
	if r.AttackVector != "" {
		fmt.Fprintf(w, "\nAttack vector:\n  %s\n", r.AttackVector)
	}
	printList(w, "Timeline", r.NumberedTimeline())
	printList(w, "Impact", r.Impact)
	printList(w, "Mitigation", r.Mitigation)
	printList(w, "Attack vectors", r.AttackVectors)
	if r.TTPs != nil {
		printList(w, "Tactics", r.TTPs.Tactics)
		printList(w, "Techniques", r.TTPs.Techniques)
		printList(w, "Procedures", r.TTPs.Procedures)
	}
	printList(w, "IOCs", r.IOCs)
	printList(w, "CVEs", r.CVEs)
	printList(w, "Incident reports", r.IncidentReports)
	printList(w, "Threat intel", r.ThreatIntel)
	for _, s := range r.Sections {
		fmt.Fprintf(w, "\n%s\n", s)
	}
	if r.Shape == domain.ShapeOpaque {
		fmt.Fprintf(w, "\n%s\n", r.RawText)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}
