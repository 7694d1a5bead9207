package timercli

import (
	"context"

	"github.com/ptimer/ptimer/common"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

func invoke[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	var out T
	if err := c.rpc.CallResult(ctx, method, params, &out); err != nil {
		return nil, wrapErr(method, err)
	}
	return &out, nil
}

func (c *Client) GetDaemonVersion(ctx context.Context) (*common.VersionResult, error) {
	return invoke[common.VersionResult](ctx, c, common.MethodGetVersion, nil)
}

// List returns the timers, optionally filtered to groupID, with remaining
// times derived at the daemon's clock.
func (c *Client) List(ctx context.Context, groupID string) (*common.ListResult, error) {
	return invoke[common.ListResult](ctx, c, common.MethodTimerList, &common.ListParams{GroupID: groupID})
}

func (c *Client) Get(ctx context.Context, id string) (*common.TimerResult, error) {
	return invoke[common.TimerResult](ctx, c, common.MethodTimerGet, &common.IDParams{ID: id})
}

func (c *Client) Create(ctx context.Context, p common.CreateParams) (*common.TimerResult, error) {
	return invoke[common.TimerResult](ctx, c, common.MethodTimerCreate, &p)
}

func (c *Client) CreateFromPreset(ctx context.Context, p common.PresetParams) (*common.TimerResult, error) {
	return invoke[common.TimerResult](ctx, c, common.MethodTimerFromPreset, &p)
}

func (c *Client) Start(ctx context.Context, id string) (*common.TimerResult, error) {
	return invoke[common.TimerResult](ctx, c, common.MethodTimerStart, &common.IDParams{ID: id})
}

func (c *Client) Pause(ctx context.Context, id string) (*common.TimerResult, error) {
	return invoke[common.TimerResult](ctx, c, common.MethodTimerPause, &common.IDParams{ID: id})
}

func (c *Client) Reset(ctx context.Context, id string) (*common.TimerResult, error) {
	return invoke[common.TimerResult](ctx, c, common.MethodTimerReset, &common.IDParams{ID: id})
}

func (c *Client) Delete(ctx context.Context, id string) (*common.DeleteResult, error) {
	return invoke[common.DeleteResult](ctx, c, common.MethodTimerDelete, &common.IDParams{ID: id})
}

func (c *Client) UndoDelete(ctx context.Context) (*common.TimerResult, error) {
	return invoke[common.TimerResult](ctx, c, common.MethodTimerUndoDelete, nil)
}

func (c *Client) Edit(ctx context.Context, p common.EditParams) (*common.TimerResult, error) {
	return invoke[common.TimerResult](ctx, c, common.MethodTimerEdit, &p)
}

func (c *Client) History(ctx context.Context) (*common.HistoryResult, error) {
	return invoke[common.HistoryResult](ctx, c, common.MethodHistoryList, nil)
}

func (c *Client) ClearHistory(ctx context.Context) error {
	_, err := invoke[common.EmptyResult](ctx, c, common.MethodHistoryClear, nil)
	return err
}

// Stats computes statistics with day boundaries in tz; empty uses the
// daemon's zone.
func (c *Client) Stats(ctx context.Context, tz string) (*timerlib.Statistics, error) {
	return invoke[timerlib.Statistics](ctx, c, common.MethodHistoryStats, &common.StatsParams{TZ: tz})
}

func (c *Client) Presets(ctx context.Context) (*common.PresetListResult, error) {
	return invoke[common.PresetListResult](ctx, c, common.MethodPresetList, nil)
}

func (c *Client) Groups(ctx context.Context) (*common.GroupListResult, error) {
	return invoke[common.GroupListResult](ctx, c, common.MethodGroupList, nil)
}
