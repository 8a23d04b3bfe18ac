package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/memberreg/internal/ir"
	"github.com/roach88/memberreg/internal/registry"
	"github.com/roach88/memberreg/internal/schema"
	"github.com/roach88/memberreg/internal/store"
)

// Record keys.
const (
	KeyState        = "state"
	KeyContractInfo = "contract_info"
)

// Receipt acknowledges a logged call.
// Rejected calls also get a receipt; their Attributes are empty.
type Receipt struct {
	TxID       string         `json:"tx_id"`
	Seq        int64          `json:"seq"`
	Attributes []ir.Attribute `json:"attributes"`
}

// Host serializes registry calls against one store.
type Host struct {
	mu        sync.Mutex
	store     *store.Store
	clock     Sequencer
	ids       TxIDGenerator
	logger    *slog.Logger
	validator *schema.Validator

	// The CUE runtime is not safe for concurrent use and validation runs
	// outside mu.
	validateMu sync.Mutex
}

// Option configures a Host.
type Option func(*Host)

// WithClock sets the sequencer. Its current position must not be behind
// the store's last logged seq.
func WithClock(c Sequencer) Option {
	return func(h *Host) {
		h.clock = c
	}
}

// WithTxIDGenerator sets how transaction IDs are assigned.
// Default: ContentIDGenerator.
func WithTxIDGenerator(g TxIDGenerator) Option {
	return func(h *Host) {
		h.ids = g
	}
}

// WithValidator sets the schema validator used by the *Raw entry points.
// Default: a validator compiled from the embedded schema.
func WithValidator(v *schema.Validator) Option {
	return func(h *Host) {
		h.validator = v
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// New creates a Host over st.
func New(ctx context.Context, st *store.Store, opts ...Option) (*Host, error) {
	h := &Host{
		store:  st,
		ids:    ContentIDGenerator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	last, err := st.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("new host: %w", err)
	}
	if h.clock == nil {
		h.clock = NewClockAt(last)
	} else if cur := h.clock.Current(); cur < last {
		return nil, fmt.Errorf("new host: clock at %d is behind logged seq %d", cur, last)
	}

	if h.validator == nil {
		v, err := schema.New()
		if err != nil {
			return nil, fmt.Errorf("new host: %w", err)
		}
		h.validator = v
	}

	return h, nil
}

// Instantiate creates the registry owned by sender.
// Fails with AlreadyInitialized if a state record exists.
func (h *Host) Instantiate(ctx context.Context, sender ir.Addr, msg ir.InstantiateMsg) (Receipt, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.commit(ctx, sender, msg, func(tx *store.Tx) (ir.Response, error) {
		_, ok, err := loadState(ctx, tx)
		if err != nil {
			return ir.Response{}, err
		}
		if ok {
			return ir.Response{}, newAlreadyInitialized()
		}

		state, resp := registry.Initialize(sender)
		if err := saveState(ctx, tx, state); err != nil {
			return ir.Response{}, err
		}
		info := ir.ContractInfo{Contract: ir.ContractName, Version: ir.ContractVersion}
		if err := saveContractInfo(ctx, tx, info); err != nil {
			return ir.Response{}, err
		}
		return resp, nil
	})
}

// Execute applies an add or remove on behalf of sender.
func (h *Host) Execute(ctx context.Context, sender ir.Addr, msg ir.ExecuteMsg) (Receipt, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.commit(ctx, sender, msg, func(tx *store.Tx) (ir.Response, error) {
		state, ok, err := loadState(ctx, tx)
		if err != nil {
			return ir.Response{}, err
		}
		if !ok {
			return ir.Response{}, newNotInitialized()
		}

		var resp ir.Response
		switch m := msg.(type) {
		case ir.AddMsg:
			resp, err = registry.AddMember(&state, sender, ir.Member{Addr: m.Addr, Priority: m.Priority})
		case ir.RemoveMsg:
			resp, err = registry.RemoveMember(&state, sender, m.Addr)
		default:
			return ir.Response{}, fmt.Errorf("execute: unknown message type %T", msg)
		}
		if err != nil {
			return ir.Response{}, err
		}

		if err := saveState(ctx, tx, state); err != nil {
			return ir.Response{}, err
		}
		return resp, nil
	})
}

// Query answers a read-only query. Queries are not logged.
//
// Returns ir.ListMembersResponse or ir.ContractInfo.
func (h *Host) Query(ctx context.Context, msg ir.QueryMsg) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch msg.(type) {
	case ir.ListMembersQuery:
		state, ok, err := loadState(ctx, h.store)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, newNotInitialized()
		}
		return ir.ListMembersResponse{Members: registry.ListMembers(state)}, nil
	case ir.ContractInfoQuery:
		data, ok, err := h.store.Get(ctx, KeyContractInfo)
		if err != nil {
			return nil, fmt.Errorf("query contract info: %w", err)
		}
		if !ok {
			return nil, newNotInitialized()
		}
		return ir.UnmarshalContractInfo(data)
	default:
		return nil, fmt.Errorf("query: unknown message type %T", msg)
	}
}

// Dispatch routes any message to Instantiate, Execute or Query.
// Mutating calls return a Receipt; queries return their response.
func (h *Host) Dispatch(ctx context.Context, sender ir.Addr, msg ir.Msg) (any, error) {
	switch m := msg.(type) {
	case ir.InstantiateMsg:
		return h.Instantiate(ctx, sender, m)
	case ir.ExecuteMsg:
		return h.Execute(ctx, sender, m)
	case ir.QueryMsg:
		return h.Query(ctx, m)
	default:
		return nil, fmt.Errorf("dispatch: unknown message type %T", msg)
	}
}

// InstantiateRaw validates and decodes a JSON instantiate message, then
// instantiates.
func (h *Host) InstantiateRaw(ctx context.Context, sender ir.Addr, data []byte) (Receipt, error) {
	if err := h.validate(h.validator.ValidateInstantiate, data); err != nil {
		return Receipt{}, newInvalidMessage(ir.KindInstantiate, err)
	}
	msg, err := ir.DecodeInstantiate(data)
	if err != nil {
		return Receipt{}, newInvalidMessage(ir.KindInstantiate, err)
	}
	return h.Instantiate(ctx, sender, msg)
}

// ExecuteRaw validates and decodes a JSON execute message, then executes.
func (h *Host) ExecuteRaw(ctx context.Context, sender ir.Addr, data []byte) (Receipt, error) {
	if err := h.validate(h.validator.ValidateExecute, data); err != nil {
		return Receipt{}, newInvalidMessage(ir.KindExecute, err)
	}
	msg, err := ir.DecodeExecute(data)
	if err != nil {
		return Receipt{}, newInvalidMessage(ir.KindExecute, err)
	}
	return h.Execute(ctx, sender, msg)
}

// QueryRaw validates and decodes a JSON query message and returns the
// canonical JSON response, checked against the response schema.
func (h *Host) QueryRaw(ctx context.Context, data []byte) ([]byte, error) {
	if err := h.validate(h.validator.ValidateQuery, data); err != nil {
		return nil, newInvalidMessage(ir.KindQuery, err)
	}
	msg, err := ir.DecodeQuery(data)
	if err != nil {
		return nil, newInvalidMessage(ir.KindQuery, err)
	}
	resp, err := h.Query(ctx, msg)
	if err != nil {
		return nil, err
	}
	out, err := ir.MarshalQueryResponse(resp)
	if err != nil {
		return nil, err
	}

	check := h.validator.ValidateContractInfo
	if _, ok := msg.(ir.ListMembersQuery); ok {
		check = h.validator.ValidateListMembers
	}
	if err := h.validate(check, out); err != nil {
		return nil, fmt.Errorf("query response: %w", err)
	}
	return out, nil
}

// StateHash returns the digest of the persisted state.
func (h *Host) StateHash(ctx context.Context) (string, error) {
	state, err := h.State(ctx)
	if err != nil {
		return "", err
	}
	return ir.StateHash(state)
}

// Tx returns the logged transaction with the given ID.
// Fails with store.ErrTxNotFound when there is none.
func (h *Host) Tx(ctx context.Context, id string) (ir.TxRecord, error) {
	return h.store.ReadTx(ctx, id)
}

// State returns the current registry state.
func (h *Host) State(ctx context.Context) (ir.State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok, err := loadState(ctx, h.store)
	if err != nil {
		return ir.State{}, err
	}
	if !ok {
		return ir.State{}, newNotInitialized()
	}
	return state, nil
}

// Log returns logged transactions in seq order.
func (h *Host) Log(ctx context.Context, filter store.TxFilter) ([]ir.TxRecord, error) {
	return h.store.ReadTxLog(ctx, filter)
}

func (h *Host) validate(fn func([]byte) error, data []byte) error {
	h.validateMu.Lock()
	defer h.validateMu.Unlock()
	return fn(data)
}

// commit runs apply and appends the log entry in one store transaction.
//
// The seq is one past the larger of the clock and the log's MAX(seq) as
// read inside the transaction, so a second process writing the same
// database never collides with this one.
//
// A rejection from apply is logged with its code as outcome and returned
// together with the receipt. Any other error rolls back and consumes no seq.
// Caller must hold h.mu.
func (h *Host) commit(
	ctx context.Context,
	sender ir.Addr,
	msg ir.Msg,
	apply func(tx *store.Tx) (ir.Response, error),
) (Receipt, error) {
	method := ir.MethodOf(msg)

	wire, err := ir.EncodeMsg(msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: encode msg: %w", method, err)
	}

	rec := ir.TxRecord{
		Sender: sender,
		Kind:   ir.KindOf(msg),
		Method: method,
		Msg:    string(wire),
	}

	var rejected error
	err = h.store.Update(ctx, func(tx *store.Tx) error {
		last, err := tx.LastSeq(ctx)
		if err != nil {
			return err
		}
		rec.Seq = max(h.clock.Current(), last) + 1

		rec.ID, err = h.ids.Generate(sender, msg, rec.Seq)
		if err != nil {
			return fmt.Errorf("generate tx id: %w", err)
		}

		resp, err := apply(tx)
		switch {
		case err == nil:
			rec.Outcome = ir.OutcomeOK
			rec.Attributes = resp.Attributes
		case isRejection(err):
			code, _ := Code(err)
			rec.Outcome = code
			rejected = err
		default:
			return err
		}
		return tx.AppendTx(ctx, rec)
	})
	if err != nil {
		h.logger.Error("tx failed",
			"tx_id", rec.ID,
			"seq", rec.Seq,
			"method", method,
			"sender", sender,
			"error", err,
		)
		return Receipt{}, fmt.Errorf("%s: %w", method, err)
	}

	h.clock.Advance(rec.Seq)
	receipt := Receipt{TxID: rec.ID, Seq: rec.Seq, Attributes: rec.Attributes}

	if rejected != nil {
		h.logger.Info("tx rejected",
			"tx_id", rec.ID,
			"seq", rec.Seq,
			"method", method,
			"sender", sender,
			"code", rec.Outcome,
		)
		return receipt, rejected
	}

	h.logger.Debug("tx committed",
		"tx_id", rec.ID,
		"seq", rec.Seq,
		"method", method,
		"sender", sender,
	)
	return receipt, nil
}

func loadState(ctx context.Context, kv store.KV) (ir.State, bool, error) {
	data, ok, err := kv.Get(ctx, KeyState)
	if err != nil {
		return ir.State{}, false, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return ir.State{}, false, nil
	}
	state, err := ir.UnmarshalState(data)
	if err != nil {
		return ir.State{}, false, fmt.Errorf("load state: %w", err)
	}
	return state, true, nil
}

func saveState(ctx context.Context, kv store.KV, state ir.State) error {
	data, err := ir.MarshalState(state)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := kv.Set(ctx, KeyState, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func saveContractInfo(ctx context.Context, kv store.KV, info ir.ContractInfo) error {
	data, err := ir.MarshalContractInfo(info)
	if err != nil {
		return fmt.Errorf("save contract info: %w", err)
	}
	if err := kv.Set(ctx, KeyContractInfo, data); err != nil {
		return fmt.Errorf("save contract info: %w", err)
	}
	return nil
}
