package process

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// findByImage lists pids whose executable is image.
func findByImage(image string) ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	var out []int
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		exe, err := os.Readlink(filepath.Join("/proc", e.Name(), "exe"))
		if err != nil {
			continue
		}
		if strings.TrimSuffix(exe, " (deleted)") == image {
			out = append(out, pid)
		}
	}
	return out, nil
}

// zombie reports an exited process nobody has reaped yet. Adopted games are
// not our children, so signal 0 alone would still find them.
func zombie(pid int) bool {
	b, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}
	i := bytes.LastIndexByte(b, ')')
	return i >= 0 && i+2 < len(b) && b[i+2] == 'Z'
}
