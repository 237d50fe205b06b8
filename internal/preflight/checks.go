package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"

	"voicejudge/internal/config"
	"voicejudge/internal/stimuli"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minFree bytes available. A directory that does not exist yet is measured
// at its closest existing parent, since the persister creates it on demand.
func CheckFreeSpace(name, path string, minFree uint64) Result {
	target := nearestExisting(path)
	var stat unix.Statfs_t
	if err := unix.Statfs(target, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if target != filepath.Clean(path) {
		if err := unix.Access(target, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, target, err)}
		}
	}
	if free < minFree {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s free, need %s)", path, humanize.IBytes(free), humanize.IBytes(minFree))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s free)", path, humanize.IBytes(free))}
}

// CheckStimuli verifies that every stimulus folder exists and holds at least
// one matching file. Practice folders are only checked when the practice
// block is enabled.
func CheckStimuli(cfg *config.Config) []Result {
	folders := stimuli.MainFolders(cfg)
	if cfg.Experiment.PracticeEnabled {
		folders = append(folders, stimuli.PracticeFolders(cfg)...)
	}
	results := make([]Result, 0, len(folders))
	for _, folder := range folders {
		name := "Stimuli " + string(folder.Condition)
		trials, err := stimuli.Build([]stimuli.Folder{folder}, cfg.Stimuli.Extensions)
		if err != nil {
			results = append(results, Result{Name: name, Detail: err.Error()})
			continue
		}
		results = append(results, Result{
			Name:   name,
			Passed: true,
			Detail: fmt.Sprintf("%d files in %s", len(trials), folder.Dir),
		})
	}
	return results
}

// CheckTerminal verifies that the participant screen and keyboard are attached
// to an interactive terminal.
func CheckTerminal(in, out *os.File) Result {
	const name = "Terminal"
	var missing []string
	if in == nil || !isTTY(in.Fd()) {
		missing = append(missing, "stdin")
	}
	if out == nil || !isTTY(out.Fd()) {
		missing = append(missing, "stdout")
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: strings.Join(missing, " and ") + " not a terminal"}
	}
	return Result{Name: name, Passed: true, Detail: "interactive"}
}

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
