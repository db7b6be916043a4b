// Package process reads the Linux process table from /proc.
package process

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/eyeremote/eyeremote/pkg/utils"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

// Table reads processes below a procfs mount.
type Table struct {
	root string
}

// NewTable returns a table over /proc.
func NewTable() *Table {
	return &Table{root: "/proc"}
}

// NewTableAt returns a table over a procfs-like directory.
func NewTableAt(root string) *Table {
	return &Table{root: root}
}

// IsAvailable reports whether the procfs mount exists.
func (t *Table) IsAvailable() bool {
	_, err := os.Stat(t.root)
	return err == nil
}

// List returns all readable processes ordered by PID.
func (t *Table) List() ([]window.ProcessInfo, error) {
	entries, err := os.ReadDir(t.root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read process table")
	}

	procs := make([]window.ProcessInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		// processes exit while we scan
		name := t.NameOf(pid)
		if name == "" {
			continue
		}
		procs = append(procs, window.ProcessInfo{PID: pid, Name: name})
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs, nil
}

// NameOf returns the process name for pid, or "" when it cannot be read.
// The kernel truncates stat names to 15 bytes, so a longer executable name
// from cmdline wins when it starts with the stat name.
func (t *Table) NameOf(pid int) string {
	dir := filepath.Join(t.root, strconv.Itoa(pid))

	statData, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return ""
	}
	name := parseStatName(string(statData))

	if cmdData, err := os.ReadFile(filepath.Join(dir, "cmdline")); err == nil {
		argv0, _, _ := strings.Cut(string(cmdData), "\x00")
		exe := utils.CleanProcessName(argv0)
		if exe != "" && len(exe) > len(name) && strings.HasPrefix(exe, name) {
			name = exe
		}
	}
	return name
}

// ParentOf returns the parent PID, or 0 when it cannot be read.
func (t *Table) ParentOf(pid int) int {
	data, err := os.ReadFile(filepath.Join(t.root, strconv.Itoa(pid), "stat"))
	if err != nil {
		return 0
	}
	stat := string(data)

	// fields after the parenthesised name: state ppid ...
	end := strings.LastIndex(stat, ")")
	if end == -1 {
		return 0
	}
	fields := strings.Fields(stat[end+1:])
	if len(fields) < 2 {
		return 0
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return ppid
}

func parseStatName(stat string) string {
	start := strings.Index(stat, "(")
	end := strings.LastIndex(stat, ")")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return stat[start+1 : end]
}
