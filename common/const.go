package common

// DefaultListenAddr is where the daemon serves its API unless configured.
const DefaultListenAddr = "127.0.0.1:7543"

// HTTP routes of the daemon API.
const (
	RPCPath   = "/jsonrpc"
	RPCWSPath = "/jsonrpc/ws"
)

// JSON-RPC method names.
const (
	MethodGetVersion      = "system.getVersion"
	MethodTimerList       = "timer.list"
	MethodTimerGet        = "timer.get"
	MethodTimerCreate     = "timer.create"
	MethodTimerFromPreset = "timer.createFromPreset"
	MethodTimerStart      = "timer.start"
	MethodTimerPause      = "timer.pause"
	MethodTimerReset      = "timer.reset"
	MethodTimerDelete     = "timer.delete"
	MethodTimerUndoDelete = "timer.undoDelete"
	MethodTimerEdit       = "timer.edit"
	MethodHistoryList     = "history.list"
	MethodHistoryClear    = "history.clear"
	MethodHistoryStats    = "history.stats"
	MethodPresetList      = "preset.list"
	MethodGroupList       = "group.list"
)

// Push notifications sent over the websocket endpoint.
const (
	NotifyTimerCompleted        = "timer.completed"
	NotifyNotificationCancelled = "timer.notificationCancelled"
	NotifyTick                  = "timer.tick"
)
