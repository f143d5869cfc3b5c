package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestStartForeground_emptyHome(t *testing.T) {
	ctx := context.Background()
	err := StartForeground(ctx, StartOptions{Home: ""})
	if err == nil {
		t.Fatal("StartForeground empty home: expected error")
	}
}

func TestStatus_notRunning(t *testing.T) {
	home := t.TempDir()
	st, err := Status(context.Background(), home)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Running {
		t.Error("fresh home should report not running")
	}
}

func TestStatus_stalePidFile(t *testing.T) {
	home := t.TempDir()
	if err := os.MkdirAll(protectedDir(home), 0o755); err != nil {
		t.Fatal(err)
	}
	// A pid that almost certainly does not exist.
	if err := os.WriteFile(pidPath(home), []byte("999999999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Status(context.Background(), home)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Running {
		t.Error("stale pid should report not running")
	}
	if _, err := os.Stat(pidPath(home)); !os.IsNotExist(err) {
		t.Error("stale pid file should be removed")
	}
}

func TestStatus_currentProcess(t *testing.T) {
	home := t.TempDir()
	if err := os.MkdirAll(protectedDir(home), 0o755); err != nil {
		t.Fatal(err)
	}
	pid := os.Getpid()
	if err := os.WriteFile(pidPath(home), []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(addrPath(home), []byte("0.0.0.0:8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Status(context.Background(), home)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Running || st.PID != pid || st.Addr != "0.0.0.0:8080" {
		t.Errorf("Status: %+v", st)
	}
}

func TestStop_notRunning(t *testing.T) {
	stopped, err := Stop(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stopped {
		t.Error("Stop on fresh home should report not running")
	}
}

func TestCheckPortAvailable_inUse(t *testing.T) {
	ln, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port
	if err := checkPortAvailable(port); err == nil {
		t.Errorf("port %d is listening, expected error", port)
	}
}

func TestPaths(t *testing.T) {
	home := filepath.Join("x", "home")
	if got := pidPath(home); got != filepath.Join(home, "protected", "daemon.pid") {
		t.Errorf("pidPath: %s", got)
	}
	if got := lockPath(home); got != filepath.Join(home, "protected", "daemon.lock") {
		t.Errorf("lockPath: %s", got)
	}
	if got := addrPath(home); got != filepath.Join(home, "protected", "daemon.addr") {
		t.Errorf("addrPath: %s", got)
	}
}
