package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/memberreg/internal/host"
	"github.com/roach88/memberreg/internal/ir"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Priority uint32
}

// NewInstantiateCommand creates the instantiate command.
func NewInstantiateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "instantiate",
		Short: "Create the registry owned by the sender",
		Long: `Create the registry with an empty member list. The sender becomes
the owner and cannot be changed later.

Examples:
  memberreg instantiate --sender alice
  memberreg instantiate --sender alice --db ./reg.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, cmd, func(h *host.Host, sender ir.Addr) (host.Receipt, error) {
				return h.Instantiate(commandContext(cmd), sender, ir.InstantiateMsg{})
			})
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <addr>",
		Short: "Add a member",
		Long: `Append a member to the registry. Only the owner may add members,
and an address can be listed once.

Examples:
  memberreg add bob --sender alice
  memberreg add carol --priority 7 --sender alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := ir.AddMsg{Addr: ir.Addr(args[0]), Priority: opts.Priority}
			return runMutation(rootOpts, cmd, func(h *host.Host, sender ir.Addr) (host.Receipt, error) {
				return h.Execute(commandContext(cmd), sender, msg)
			})
		},
	}

	cmd.Flags().Uint32Var(&opts.Priority, "priority", 0, "member priority")

	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <addr>",
		Short: "Remove a member",
		Long: `Remove a member from the registry. Only the owner may remove members.

Examples:
  memberreg remove bob --sender alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := ir.RemoveMsg{Addr: ir.Addr(args[0])}
			return runMutation(rootOpts, cmd, func(h *host.Host, sender ir.Addr) (host.Receipt, error) {
				return h.Execute(commandContext(cmd), sender, msg)
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show contract name, version and state hash",
		Long: `Show the contract name and version recorded at instantiate, and the
SHA-256 hash of the canonical registry state. Two databases holding the
same owner and member list print the same hash.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, cmd)
		},
	}
}

// InfoResult is the output of the info command.
type InfoResult struct {
	Contract  string `json:"contract"`
	Version   string `json:"version"`
	StateHash string `json:"state_hash"`
}

func runInfo(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	h, closeFn, err := opts.openHost(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	f := opts.formatter(cmd)
	resp, err := h.Query(ctx, ir.ContractInfoQuery{})
	if err != nil {
		return f.Reject(err)
	}
	info, ok := resp.(ir.ContractInfo)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("unexpected query response %T", resp))
	}
	hash, err := h.StateHash(ctx)
	if err != nil {
		return f.Reject(err)
	}

	result := InfoResult{Contract: info.Contract, Version: info.Version, StateHash: hash}
	return f.Result(result, fmt.Sprintf("%s %s\nstate %s\n", result.Contract, result.Version, result.StateHash))
}

// runMutation opens the host, runs call as the configured sender and
// prints the receipt.
func runMutation(opts *RootOptions, cmd *cobra.Command, call func(*host.Host, ir.Addr) (host.Receipt, error)) error {
	sender, err := opts.sender()
	if err != nil {
		return err
	}

	h, closeFn, err := opts.openHost(commandContext(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	f := opts.formatter(cmd)
	receipt, err := call(h, sender)
	if err != nil {
		return f.Reject(err)
	}

	f.VerboseLog("committed %s at seq %d", receipt.TxID, receipt.Seq)
	return f.Result(receipt, formatReceipt(receipt))
}

// runList opens the host and prints the member list.
func runList(opts *RootOptions, cmd *cobra.Command) error {
	h, closeFn, err := opts.openHost(commandContext(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	f := opts.formatter(cmd)
	resp, err := h.Query(commandContext(cmd), ir.ListMembersQuery{})
	if err != nil {
		return f.Reject(err)
	}
	r, ok := resp.(ir.ListMembersResponse)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("unexpected query response %T", resp))
	}
	return f.Result(r, formatMembers(r.Members))
}

// formatReceipt renders a receipt as text.
func formatReceipt(r host.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ok seq=%d tx=%s\n", r.Seq, r.TxID)
	for _, attr := range r.Attributes {
		fmt.Fprintf(&b, "  %s=%s\n", attr.Key, attr.Value)
	}
	return b.String()
}

// formatMembers renders the member list, one "addr priority" pair per line.
func formatMembers(members []ir.Member) string {
	if len(members) == 0 {
		return "(no members)\n"
	}
	var b strings.Builder
	for _, m := range members {
		fmt.Fprintf(&b, "%s\t%d\n", m.Addr, m.Priority)
	}
	return b.String()
}
