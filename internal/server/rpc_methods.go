package server

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/ptimer/ptimer/common"
	"github.com/ptimer/ptimer/internal/lifecycle"
	"github.com/ptimer/ptimer/internal/store"
	"github.com/ptimer/ptimer/pkg/logger"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

// JSON-RPC error codes of the daemon API.
const (
	codeTimerNotFound  = jrpc2.Code(-32001)
	codePresetNotFound = jrpc2.Code(-32002)
	codePersistence    = jrpc2.Code(-32010)
	codeUnauthorized   = jrpc2.Code(-32600)
	codeInvalidParams  = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // bearer token; empty rejects every request
	Version   string
	Commit    string
	BuildType string
	// Location sets day boundaries for history.stats; defaults to time.Local.
	Location *time.Location
	// Now is the wall clock; defaults to time.Now.
	Now func() time.Time
}

// RPCServer holds the method table and the HTTP bridge serving it.
type RPCServer struct {
	bridge  jhttp.Bridge
	methods handler.Map
	secret  string
	version common.VersionResult
	loc     *time.Location
	now     func() time.Time
	repo    *store.Repository
	ctl     *lifecycle.Controller
	log     logger.Logger
}

// NewRPCServer builds the method table over repo and ctl.
func NewRPCServer(cfg *RPCConfig, repo *store.Repository, ctl *lifecycle.Controller, l logger.Logger) *RPCServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	rs := &RPCServer{
		secret: cfg.Secret,
		version: common.VersionResult{
			Version:   cfg.Version,
			Commit:    cfg.Commit,
			BuildType: cfg.BuildType,
		},
		loc:  cfg.Location,
		now:  cfg.Now,
		repo: repo,
		ctl:  ctl,
		log:  l,
	}
	if rs.loc == nil {
		rs.loc = time.Local
	}
	if rs.now == nil {
		rs.now = time.Now
	}

	rs.methods = handler.Map{
		common.MethodGetVersion:      handler.New(rs.systemGetVersion),
		common.MethodTimerList:       handler.New(rs.timerList),
		common.MethodTimerGet:        handler.New(rs.timerGet),
		common.MethodTimerCreate:     handler.New(rs.timerCreate),
		common.MethodTimerFromPreset: handler.New(rs.timerCreateFromPreset),
		common.MethodTimerStart:      handler.New(rs.command(func(p *common.IDParams) lifecycle.Command { return lifecycle.Start{ID: p.ID} })),
		common.MethodTimerPause:      handler.New(rs.command(func(p *common.IDParams) lifecycle.Command { return lifecycle.Pause{ID: p.ID} })),
		common.MethodTimerReset:      handler.New(rs.command(func(p *common.IDParams) lifecycle.Command { return lifecycle.Reset{ID: p.ID} })),
		common.MethodTimerDelete:     handler.New(rs.timerDelete),
		common.MethodTimerUndoDelete: handler.New(rs.timerUndoDelete),
		common.MethodTimerEdit:       handler.New(rs.timerEdit),
		common.MethodHistoryList:     handler.New(rs.historyList),
		common.MethodHistoryClear:    handler.New(rs.historyClear),
		common.MethodHistoryStats:    handler.New(rs.historyStats),
		common.MethodPresetList:      handler.New(rs.presetList),
		common.MethodGroupList:       handler.New(rs.groupList),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

// Close shuts down the HTTP bridge.
func (rs *RPCServer) Close() error {
	return rs.bridge.Close()
}

// rpcError maps domain errors onto JSON-RPC error codes.
func rpcError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, timerlib.ErrNotFound):
		return &jrpc2.Error{Code: codeTimerNotFound, Message: "timer not found"}
	case errors.Is(err, timerlib.ErrInvalidDuration):
		return &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	case errors.Is(err, store.ErrPersistence):
		return &jrpc2.Error{Code: codePersistence, Message: "storage unavailable, retry: " + err.Error()}
	default:
		return err
	}
}

func requireID(id string) error {
	if id == "" {
		return &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: id"}
	}
	return nil
}

// display returns t as a client should show it at nowMs. The result is not
// written back.
func display(t timerlib.Timer, nowMs int64) timerlib.Timer {
	d, _ := timerlib.Reconcile(t, nowMs)
	return d
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResult, error) {
	v := rs.version
	return &v, nil
}

func (rs *RPCServer) timerList(ctx context.Context, p *common.ListParams) (*common.ListResult, error) {
	if p == nil {
		p = &common.ListParams{}
	}
	timers, err := rs.repo.Timers(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	nowMs := rs.now().UnixMilli()
	out := make([]timerlib.Timer, 0, len(timers))
	for _, t := range timers {
		if p.GroupID != "" && t.Group() != p.GroupID {
			continue
		}
		out = append(out, display(t, nowMs))
	}
	return &common.ListResult{Timers: out, NowEpochMs: nowMs}, nil
}

func (rs *RPCServer) timerGet(ctx context.Context, p *common.IDParams) (*common.TimerResult, error) {
	if err := requireID(p.ID); err != nil {
		return nil, err
	}
	t, err := rs.repo.Timer(ctx, p.ID)
	if err != nil {
		return nil, rpcError(err)
	}
	t = display(t, rs.now().UnixMilli())
	return &common.TimerResult{Timer: &t}, nil
}

func (rs *RPCServer) handle(ctx context.Context, cmd lifecycle.Command) (*common.TimerResult, error) {
	res, err := rs.ctl.Handle(ctx, cmd)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.TimerResult{Timer: res.Timer, Changed: res.Changed}, nil
}

// command adapts an id-only lifecycle command to a method handler.
func (rs *RPCServer) command(build func(*common.IDParams) lifecycle.Command) func(context.Context, *common.IDParams) (*common.TimerResult, error) {
	return func(ctx context.Context, p *common.IDParams) (*common.TimerResult, error) {
		if err := requireID(p.ID); err != nil {
			return nil, err
		}
		return rs.handle(ctx, build(p))
	}
}

func (rs *RPCServer) timerCreate(ctx context.Context, p *common.CreateParams) (*common.TimerResult, error) {
	return rs.handle(ctx, lifecycle.CreateCustom{
		Label:      p.Label,
		ColorIndex: p.ColorIndex,
		DurationMs: p.DurationMs,
		GroupID:    p.GroupID,
	})
}

func (rs *RPCServer) timerCreateFromPreset(ctx context.Context, p *common.PresetParams) (*common.TimerResult, error) {
	cmd := lifecycle.CreateFromPreset{DurationMs: p.DurationMs, Label: p.Label, GroupID: p.GroupID}
	if p.PresetID != "" {
		presets, err := rs.repo.Presets(ctx)
		if err != nil {
			return nil, rpcError(err)
		}
		found := false
		for _, pr := range presets {
			if pr.ID == p.PresetID {
				cmd.DurationMs = pr.DurationMs
				if cmd.Label == "" {
					cmd.Label = pr.Label
				}
				found = true
				break
			}
		}
		if !found {
			return nil, &jrpc2.Error{Code: codePresetNotFound, Message: "preset not found: " + p.PresetID}
		}
	}
	return rs.handle(ctx, cmd)
}

func (rs *RPCServer) timerDelete(ctx context.Context, p *common.IDParams) (*common.DeleteResult, error) {
	if err := requireID(p.ID); err != nil {
		return nil, err
	}
	res, err := rs.ctl.Handle(ctx, lifecycle.Delete{ID: p.ID})
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.DeleteResult{Label: res.Label}, nil
}

func (rs *RPCServer) timerUndoDelete(ctx context.Context) (*common.TimerResult, error) {
	return rs.handle(ctx, lifecycle.UndoDelete{})
}

func (rs *RPCServer) timerEdit(ctx context.Context, p *common.EditParams) (*common.TimerResult, error) {
	if err := requireID(p.ID); err != nil {
		return nil, err
	}
	return rs.handle(ctx, lifecycle.Edit{
		ID:         p.ID,
		Label:      p.Label,
		ColorIndex: p.ColorIndex,
		GroupID:    p.GroupID,
	})
}

func (rs *RPCServer) historyList(ctx context.Context) (*common.HistoryResult, error) {
	entries, err := rs.repo.History(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompletedAtEpochMs > entries[j].CompletedAtEpochMs
	})
	if entries == nil {
		entries = []timerlib.HistoryEntry{}
	}
	return &common.HistoryResult{Entries: entries}, nil
}

func (rs *RPCServer) historyClear(ctx context.Context) (*common.EmptyResult, error) {
	if err := rs.repo.ClearHistory(ctx); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) historyStats(ctx context.Context, p *common.StatsParams) (*timerlib.Statistics, error) {
	loc := rs.loc
	if p != nil && p.TZ != "" {
		l, err := time.LoadLocation(p.TZ)
		if err != nil {
			return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "invalid tz: " + err.Error()}
		}
		loc = l
	}
	entries, err := rs.repo.History(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	stats := timerlib.ComputeStatistics(entries, rs.now(), loc)
	return &stats, nil
}

func (rs *RPCServer) presetList(ctx context.Context) (*common.PresetListResult, error) {
	presets, err := rs.repo.Presets(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	if presets == nil {
		presets = []timerlib.Preset{}
	}
	return &common.PresetListResult{Presets: presets}, nil
}

func (rs *RPCServer) groupList(ctx context.Context) (*common.GroupListResult, error) {
	groups, err := rs.repo.Groups(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	if groups == nil {
		groups = []timerlib.Group{}
	}
	return &common.GroupListResult{Groups: groups}, nil
}
