package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/memberreg/internal/host"
	"github.com/roach88/memberreg/internal/ir"
	"github.com/roach88/memberreg/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	ID           string
	FilterSender string
	Method       string
	Limit        int
}

// LogEntry is one transaction in log output.
type LogEntry struct {
	Seq        int64           `json:"seq"`
	ID         string          `json:"id"`
	Sender     string          `json:"sender"`
	Kind       string          `json:"kind"`
	Method     string          `json:"method"`
	Msg        json.RawMessage `json:"msg"`
	Outcome    string          `json:"outcome"`
	Attributes []ir.Attribute  `json:"attributes"`
}

// LogResult holds the complete log output.
type LogResult struct {
	Entries []LogEntry `json:"entries"`
	Stats   LogStats   `json:"stats"`
}

// LogStats holds summary counts for the listed entries.
type LogStats struct {
	Total     int `json:"total"`
	Committed int `json:"committed"`
	Rejected  int `json:"rejected"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the transaction log",
		Long: `Show recorded instantiate and execute calls in commit order,
including rejected ones. Queries are not recorded.

Examples:
  memberreg log
  memberreg log --sender mallory
  memberreg log --method add --limit 10 --format json
  memberreg log --id 3f9a...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	// --sender is already the caller identity, so the filter gets its own name.
	cmd.Flags().StringVar(&opts.FilterSender, "from", "", "only show calls made by this sender")
	cmd.Flags().StringVar(&opts.Method, "method", "", "only show calls with this method (instantiate|add|remove)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of entries (0 = all)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show only the transaction with this ID")
	cmd.MarkFlagsMutuallyExclusive("id", "from")
	cmd.MarkFlagsMutuallyExclusive("id", "method")
	cmd.MarkFlagsMutuallyExclusive("id", "limit")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid limit %d: must be >= 0", opts.Limit))
	}

	h, closeFn, err := opts.openHost(commandContext(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	records, err := readLog(commandContext(cmd), h, opts)
	if err != nil {
		return err
	}

	result := buildLogResult(records)
	if opts.Config.Format == "json" {
		return outputLogJSON(cmd, result)
	}
	outputLogText(cmd.OutOrStdout(), result, opts.Verbose)
	return nil
}

// readLog returns the single transaction named by --id, or the filtered log.
func readLog(ctx context.Context, h *host.Host, opts *LogOptions) ([]ir.TxRecord, error) {
	if opts.ID != "" {
		rec, err := h.Tx(ctx, opts.ID)
		if errors.Is(err, store.ErrTxNotFound) {
			return nil, NewExitError(ExitFailure, fmt.Sprintf("transaction %s not found", opts.ID))
		}
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read transaction", err)
		}
		return []ir.TxRecord{rec}, nil
	}

	records, err := h.Log(ctx, store.TxFilter{
		Sender: ir.Addr(opts.FilterSender),
		Method: opts.Method,
		Limit:  opts.Limit,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read transaction log", err)
	}
	return records, nil
}

// buildLogResult converts store records to log entries.
func buildLogResult(records []ir.TxRecord) LogResult {
	result := LogResult{Entries: make([]LogEntry, 0, len(records))}
	for _, rec := range records {
		result.Entries = append(result.Entries, LogEntry{
			Seq:        rec.Seq,
			ID:         rec.ID,
			Sender:     string(rec.Sender),
			Kind:       rec.Kind,
			Method:     rec.Method,
			Msg:        json.RawMessage(rec.Msg),
			Outcome:    rec.Outcome,
			Attributes: rec.Attributes,
		})
		if rec.OK() {
			result.Stats.Committed++
		} else {
			result.Stats.Rejected++
		}
	}
	result.Stats.Total = len(result.Entries)
	return result
}

// outputLogJSON outputs the log result as JSON.
func outputLogJSON(cmd *cobra.Command, result LogResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputLogText outputs the log result as text.
func outputLogText(w io.Writer, result LogResult, verbose bool) {
	if len(result.Entries) == 0 {
		fmt.Fprintln(w, "(no transactions)")
		return
	}

	for _, e := range result.Entries {
		fmt.Fprintf(w, "[%d] %s %s %s\n", e.Seq, e.Sender, e.Method, e.Outcome)
		if verbose {
			fmt.Fprintf(w, "     msg: %s\n", e.Msg)
			fmt.Fprintf(w, "     id:  %s\n", truncateID(e.ID))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d transactions (%d committed, %d rejected)\n",
		result.Stats.Total, result.Stats.Committed, result.Stats.Rejected)
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
