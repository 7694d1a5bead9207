package timercli

import (
	"fmt"
	"net"
	"time"
)

const (
	daemonStartTimeout = 3 * time.Second
	addrPollInterval   = 50 * time.Millisecond
	addrDialTimeout    = 100 * time.Millisecond
)

// spawnDaemon starts "<executable> daemon" detached from the caller.
var spawnDaemon = spawnDaemonProcess

// EnsureDaemon checks whether a daemon listens on addr and spawns one if
// not. It returns nil once the address accepts connections.
func EnsureDaemon(addr string) error {
	if isDaemonRunning(addr) {
		return nil
	}
	if err := spawnDaemon(); err != nil {
		return err
	}
	return waitForAddr(addr, daemonStartTimeout)
}

func isDaemonRunning(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, addrDialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// waitForAddr polls until addr accepts connections or timeout expires.
func waitForAddr(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isDaemonRunning(addr) {
			return nil
		}
		time.Sleep(addrPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}
