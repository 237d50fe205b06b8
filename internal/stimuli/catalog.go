package stimuli

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"voicejudge/internal/config"
	"voicejudge/internal/faults"
)

// Folder maps a condition to the directory its stimuli live in.
type Folder struct {
	Condition Condition
	Dir       string
}

// MainFolders returns the four main-block folders from configuration.
func MainFolders(cfg *config.Config) []Folder {
	return []Folder{
		{Condition: RealEasy, Dir: cfg.Stimuli.RealEasy},
		{Condition: RealHard, Dir: cfg.Stimuli.RealHard},
		{Condition: FakeEasy, Dir: cfg.Stimuli.FakeEasy},
		{Condition: FakeHard, Dir: cfg.Stimuli.FakeHard},
	}
}

// PracticeFolders returns the two practice folders from configuration.
func PracticeFolders(cfg *config.Config) []Folder {
	return []Folder{
		{Condition: PracticeFake, Dir: cfg.Stimuli.PracticeFake},
		{Condition: PracticeReal, Dir: cfg.Stimuli.PracticeReal},
	}
}

// Build discovers one trial per matching file directly inside each folder.
// Files are matched case-insensitively against extensions; anything else,
// including subdirectories, is ignored. A missing or empty folder is a
// configuration error. The result is ordered by folder, then file name.
func Build(folders []Folder, extensions []string) ([]Trial, error) {
	if len(folders) == 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "stimuli", "build", "no stimulus folders configured", nil)
	}
	var trials []Trial
	for _, folder := range folders {
		found, err := scanFolder(folder, extensions)
		if err != nil {
			return nil, err
		}
		trials = append(trials, found...)
	}
	return trials, nil
}

func scanFolder(folder Folder, extensions []string) ([]Trial, error) {
	if !folder.Condition.Valid() {
		return nil, faults.Wrap(faults.ErrConfiguration, "stimuli", "scan",
			fmt.Sprintf("unknown condition %q", folder.Condition), nil)
	}
	entries, err := os.ReadDir(folder.Dir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "stimuli", "scan",
			fmt.Sprintf("%s folder %s is not readable", folder.Condition, folder.Dir), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !HasExtension(entry.Name(), extensions) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "stimuli", "scan",
			fmt.Sprintf("%s folder %s contains no %s files", folder.Condition, folder.Dir, strings.Join(extensions, "/")), nil)
	}
	sort.Strings(names)

	trials := make([]Trial, 0, len(names))
	for _, name := range names {
		trials = append(trials, Trial{
			Path:         filepath.ToSlash(filepath.Join(folder.Dir, name)),
			Filename:     name,
			Condition:    folder.Condition,
			Authenticity: folder.Condition.Authenticity(),
			Difficulty:   folder.Condition.Difficulty(),
		})
	}
	return trials, nil
}

// HasExtension reports whether name ends in one of extensions, ignoring case.
func HasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, candidate := range extensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}

// Shuffle returns a uniformly permuted copy of trials using a Fisher-Yates
// shuffle. A nil rng draws from a randomly seeded source.
func Shuffle(trials []Trial, rng *rand.Rand) []Trial {
	out := make([]Trial, len(trials))
	copy(out, trials)
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Counts tallies trials per condition.
func Counts(trials []Trial) map[Condition]int {
	counts := make(map[Condition]int)
	for _, trial := range trials {
		counts[trial.Condition]++
	}
	return counts
}
