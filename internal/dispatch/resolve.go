package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Resolve validates that repoName exists as a directory under baseDir and
// returns its absolute path. On a miss it enumerates the sibling directories
// of baseDir so the caller can suggest alternatives.
func Resolve(baseDir, repoName string) (ResolvedTarget, error) {
	if repoName == "" {
		return ResolvedTarget{}, &ParseError{MissingRequired: "repo"}
	}

	abs, err := filepath.Abs(filepath.Join(baseDir, repoName))
	if err != nil {
		return ResolvedTarget{}, fmt.Errorf("resolving %s: %w", repoName, err)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return ResolvedTarget{}, &NotFoundError{
			RepoName: repoName,
			BaseDir:  baseDir,
			Siblings: listDirs(baseDir),
		}
	}

	return ResolvedTarget{RepoName: repoName, AbsolutePath: abs}, nil
}

// ResolveFile confirms that filePath names a regular file under the resolved
// repository.
func ResolveFile(target ResolvedTarget, filePath string) error {
	full := filepath.Join(target.AbsolutePath, filePath)
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return &FileNotFoundError{FilePath: filePath, RepoPath: target.AbsolutePath}
	}
	return nil
}

func listDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
