package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/kballard/go-shellquote"
)

// parse splits a stage command into words using shell quoting rules.
func parse(stage int, command string) ([]string, error) {
	words, err := shellquote.Split(strings.TrimSpace(command))
	if err != nil {
		return nil, &CommandError{Stage: stage, Command: command, Kind: ErrInvalidCommand, Cause: err}
	}
	if len(words) == 0 {
		return nil, &CommandError{Stage: stage, Command: command, Kind: ErrInvalidCommand}
	}
	return words, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// spawnError wraps a start failure, looking for a close match on $PATH
// when the executable does not exist.
func spawnError(stage int, command, executable string, cause error) *CommandError {
	e := &CommandError{
		Stage:      stage,
		Command:    command,
		Executable: executable,
		Kind:       ErrSpawnFailed,
		Cause:      cause,
	}
	if isNotFound(cause) && !strings.ContainsRune(executable, filepath.Separator) {
		e.Suggestion = Suggest(executable, os.Getenv("PATH"))
	}
	return e
}

// Suggest returns the executable on pathList closest to name by edit
// distance, or "" if none is close enough.
func Suggest(name, pathList string) string {
	limit := 2
	if len(name) <= 3 {
		limit = 1
	}

	best, bestDist := "", limit+1
	for _, dir := range filepath.SplitList(pathList) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			candidate := entry.Name()
			if candidate == name {
				continue
			}
			d := levenshtein.ComputeDistance(name, candidate)
			if d > bestDist || (d == bestDist && candidate >= best) {
				continue
			}
			if !executable(dir, entry) {
				continue
			}
			best, bestDist = candidate, d
		}
	}
	return best
}

func executable(dir string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
