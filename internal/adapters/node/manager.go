package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

const (
	// DefaultBinary is the local zkSync node executable
	DefaultBinary = "anvil-zksync"
	// DefaultNodeName is used when no instance name is given
	DefaultNodeName = "in-memory"
	// DefaultNodePort matches the in-memory network RPC URL
	DefaultNodePort = "8011"
	// DefaultChainID is the chain ID anvil-zksync reports by default
	DefaultChainID = "260"
)

// Manager starts and stops local zkSync nodes. Each node keeps its pid and log
// files under <data dir>/nodes.
type Manager struct {
	binary       string
	dir          string
	readyTimeout time.Duration
	pollInterval time.Duration
	log          *slog.Logger
}

// NewManager creates a new node manager
func NewManager(cfg *config.RuntimeConfig, log *slog.Logger) *Manager {
	binary := os.Getenv("AADEPLOY_NODE_BINARY")
	if binary == "" {
		binary = DefaultBinary
	}
	return &Manager{
		binary:       binary,
		dir:          filepath.Join(cfg.DataDir, "nodes"),
		readyTimeout: 30 * time.Second,
		pollInterval: 250 * time.Millisecond,
		log:          log,
	}
}

// Start launches the node in the background and waits until its RPC answers
func (m *Manager) Start(ctx context.Context, node *domain.LocalNode) error {
	m.setFilePaths(node)
	if pid, ok := m.runningPID(node); ok {
		return fmt.Errorf("node '%s' is already running (PID %d)", node.Name, pid)
	}
	if err := os.MkdirAll(filepath.Dir(node.LogFile), 0o755); err != nil {
		return fmt.Errorf("failed to create node directory: %w", err)
	}

	logFile, err := os.Create(node.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(m.binary, buildNodeArgs(node)...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", m.binary, err)
	}
	m.log.Debug("started local node", "name", node.Name, "pid", cmd.Process.Pid, "port", node.Port)

	if err := os.WriteFile(node.PidFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0o644); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	// The node outlives this process; release it so it is not reaped with us.
	_ = cmd.Process.Release()

	readyCtx, cancel := context.WithTimeout(ctx, m.readyTimeout)
	defer cancel()
	if _, err := m.waitReady(readyCtx, node); err != nil {
		return fmt.Errorf("node '%s' did not become ready, see %s: %w", node.Name, node.LogFile, err)
	}
	return nil
}

// Stop terminates the node and removes its PID file
func (m *Manager) Stop(ctx context.Context, node *domain.LocalNode) error {
	m.setFilePaths(node)
	pid, ok := m.runningPID(node)
	if !ok {
		_ = os.Remove(node.PidFile)
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	// The node is not our child, so poll for it to go away.
	deadline := time.NewTimer(5 * time.Second)
	defer deadline.Stop()
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for alive(pid) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			_ = process.Kill()
		case <-ticker.C:
		}
	}

	if err := os.Remove(node.PidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// GetStatus reports whether the node runs and answers RPC calls
func (m *Manager) GetStatus(ctx context.Context, node *domain.LocalNode) (*domain.NodeStatus, error) {
	m.setFilePaths(node)
	status := &domain.NodeStatus{LogFile: node.LogFile}

	pid, ok := m.runningPID(node)
	if !ok {
		return status, nil
	}
	status.Running = true
	status.PID = pid
	status.RPCURL = rpcURL(node)

	chainID, err := m.chainID(ctx, node)
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.RPCHealthy = true
	status.ChainID = chainID
	return status, nil
}

// StreamLogs copies the node log to w and keeps following it until ctx ends
func (m *Manager) StreamLogs(ctx context.Context, node *domain.LocalNode, w io.Writer) error {
	m.setFilePaths(node)
	f, err := os.Open(node.LogFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: log file %s", domain.ErrNotFound, node.LogFile)
		}
		return err
	}
	defer f.Close()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		if _, err := io.Copy(w, f); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Manager) waitReady(ctx context.Context, node *domain.LocalNode) (uint64, error) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		chainID, err := m.chainID(ctx, node)
		if err == nil {
			return chainID, nil
		}
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %v", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

func (m *Manager) chainID(ctx context.Context, node *domain.LocalNode) (uint64, error) {
	client, err := w3.Dial(rpcURL(node))
	if err != nil {
		return 0, err
	}
	defer client.Close()

	var chainID uint64
	if err := client.CallCtx(ctx, eth.ChainID().Returns(&chainID)); err != nil {
		return 0, err
	}
	return chainID, nil
}

// setFilePaths fills in defaults and the per-node pid and log files
func (m *Manager) setFilePaths(node *domain.LocalNode) {
	if strings.TrimSpace(node.Name) == "" {
		node.Name = DefaultNodeName
	}
	if strings.TrimSpace(node.Port) == "" {
		node.Port = DefaultNodePort
	}
	if node.PidFile == "" {
		node.PidFile = filepath.Join(m.dir, node.Name+".pid")
	}
	if node.LogFile == "" {
		node.LogFile = filepath.Join(m.dir, node.Name+".log")
	}
}

func (m *Manager) runningPID(node *domain.LocalNode) (int, bool) {
	data, err := os.ReadFile(node.PidFile)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, alive(pid)
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func buildNodeArgs(node *domain.LocalNode) []string {
	args := []string{"--port", node.Port}
	if node.ChainID != "" {
		args = append(args, "--chain-id", node.ChainID)
	}
	if node.ForkURL != "" {
		return append(args, "fork", "--fork-url", node.ForkURL)
	}
	return append(args, "run")
}

func rpcURL(node *domain.LocalNode) string {
	return "http://127.0.0.1:" + node.Port
}

var _ usecase.NodeManager = (*Manager)(nil)
