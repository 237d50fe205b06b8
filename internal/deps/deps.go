package deps

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// Requirement defines an external program the station relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Requirement
	Available bool
	// Detail explains why an unavailable dependency could not be used.
	Detail string
}

// Summary returns the resolved command for available entries and the failure
// detail otherwise.
func (s Status) Summary() string {
	if s.Available {
		return s.Command
	}
	return s.Detail
}

// Check resolves one requirement. Bare names are looked up on PATH; names with
// a path separator must point at an executable file. Available entries carry
// the resolved path in Command.
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	switch {
	case err == nil:
		status.Command = resolved
		status.Available = true
	case errors.Is(err, fs.ErrPermission):
		status.Detail = fmt.Sprintf("%s is not executable", req.Command)
	case strings.ContainsRune(req.Command, '/'):
		status.Detail = fmt.Sprintf("%s does not exist", req.Command)
	default:
		status.Detail = fmt.Sprintf("binary %q not found on PATH", req.Command)
	}
	if !status.Available && req.Description != "" {
		status.Detail += " (" + strings.ToLower(req.Description[:1]) + req.Description[1:] + ")"
	}
	return status
}

// CheckBinaries evaluates the provided requirements in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(req))
	}
	return results
}

// Missing returns the unavailable requirements that are not optional.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
