package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/memberreg/internal/host"
	"github.com/roach88/memberreg/internal/ir"
)

// RawOptions holds flags for the exec and query commands.
type RawOptions struct {
	*RootOptions
	Msg string // JSON message, or "-" for stdin
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RawOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute a raw JSON message",
		Long: `Validate a JSON execute message against the wire schema and execute it.

Examples:
  memberreg exec --sender alice --msg '{"add":{"addr":"bob","priority":3}}'
  memberreg exec --sender alice --msg '{"remove":{"addr":"bob"}}'
  echo '{"add":{"addr":"bob"}}' | memberreg exec --sender alice --msg -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readMsg(opts.Msg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runMutation(rootOpts, cmd, func(h *host.Host, sender ir.Addr) (host.Receipt, error) {
				return h.ExecuteRaw(commandContext(cmd), sender, data)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Msg, "msg", "", "JSON execute message, or - for stdin (required)")
	_ = cmd.MarkFlagRequired("msg")

	return cmd
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RawOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a raw JSON query",
		Long: `Validate a JSON query message against the wire schema and print the
canonical JSON response.

Examples:
  memberreg query --msg '{"list_members":{}}'
  memberreg query --msg '{"contract_info":{}}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRawQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Msg, "msg", "", "JSON query message, or - for stdin (required)")
	_ = cmd.MarkFlagRequired("msg")

	return cmd
}

func runRawQuery(opts *RawOptions, cmd *cobra.Command) error {
	data, err := readMsg(opts.Msg, cmd.InOrStdin())
	if err != nil {
		return err
	}

	h, closeFn, err := opts.openHost(commandContext(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	f := opts.formatter(cmd)
	resp, err := h.QueryRaw(commandContext(cmd), data)
	if err != nil {
		return f.Reject(err)
	}
	return f.Result(json.RawMessage(resp), string(resp)+"\n")
}

// readMsg returns the message bytes from the flag value or, for "-", from r.
func readMsg(value string, r io.Reader) ([]byte, error) {
	if value != "-" {
		return []byte(value), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read message from stdin", err)
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return nil, NewExitError(ExitCommandError, "empty message on stdin")
	}
	return []byte(msg), nil
}
