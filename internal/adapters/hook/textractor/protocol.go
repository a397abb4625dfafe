package textractor

import (
	"fmt"
	"strconv"
	"strings"

	"yagt/internal/domain"
	"yagt/internal/textcodec"
)

// The extractor host speaks a line protocol on stdio, in the host's encoding.
//
//	in:  attach -P<pid>
//	     detach -P<pid>
//	     <hook code> -P<pid>
//	out: [<handle>:<pid>:<address>:<ctx>:<ctx2>:<thread name>:<hook code>] <text>
//
// Host diagnostics arrive on the thread named "Console".
const consoleThread = "Console"

type threadLine struct {
	Handle string
	PID    int
	Name   string
	Code   string
	Text   string
}

func attachCmd(pid int) string            { return fmt.Sprintf("attach -P%d", pid) }
func detachCmd(pid int) string            { return fmt.Sprintf("detach -P%d", pid) }
func hookCmd(code string, pid int) string { return fmt.Sprintf("%s -P%d", code, pid) }

// withCodepage puts the code page for enc into a hook code that names none,
// so the host decodes the game's bytes itself. The host always reports text
// as Unicode, whatever the game's encoding.
func withCodepage(code, enc string) string {
	if len(code) < 2 || strings.Contains(strings.SplitN(code, "@", 2)[0], "#") {
		return code
	}
	cp, ok := textcodec.Codepage(enc)
	if !ok {
		return code
	}
	// H or R, the type letter, then an optional N for null-terminated.
	at := 2
	if len(code) > at && (code[at] == 'N' || code[at] == 'n') {
		at++
	}
	return fmt.Sprintf("%s%d#%s", code[:at], cp, code[at:])
}

func parseLine(line string) (threadLine, bool) {
	line = strings.TrimPrefix(line, "\uFEFF")
	if !strings.HasPrefix(line, "[") {
		return threadLine{}, false
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		if !strings.HasSuffix(line, "]") {
			return threadLine{}, false
		}
		end = len(line) - 1
	}
	fields := strings.SplitN(line[1:end], ":", 7)
	if len(fields) != 7 {
		return threadLine{}, false
	}
	pid, err := strconv.ParseInt(fields[1], 16, 64)
	if err != nil {
		return threadLine{}, false
	}
	tl := threadLine{Handle: fields[0], PID: int(pid), Name: fields[5], Code: fields[6]}
	if end+2 <= len(line) {
		tl.Text = line[end+2:]
	}
	return tl, true
}

// consoleVerdict maps a host diagnostic to an install outcome. ok is true for
// messages confirming the hook; err is non-nil for failures; both zero means
// the message is informational.
func consoleVerdict(msg string) (ok bool, err error) {
	m := strings.ToLower(msg)
	switch {
	case containsAny(m, "access denied", "insufficient privilege", "run as administrator"):
		return false, domain.ErrPermissionDenied
	case containsAny(m, "could not open process", "invalid process", "process not found", "failed to attach"):
		return false, domain.ErrProcessNotFound
	case containsAny(m, "invalid code", "failed to insert", "could not find", "unsupported"):
		return false, domain.ErrUnsupportedTarget
	case containsAny(m, "hook inserted", "inserting hook"):
		return true, nil
	}
	return false, nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
