package ciutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Project root markers.
const (
	GoModFile    = "go.mod"
	GitDirectory = ".git"
)

// MigrationsPath is the postgres migrations directory relative to the
// project root.
var MigrationsPath = filepath.Join("internal", "platform", "postgres", "migrations")

var (
	ErrProjectRootNotFound = errors.New("unable to find project root")
	ErrInvalidProjectRoot  = errors.New("invalid project root: no go.mod file found")
)

// maxTraversal bounds the upward directory search.
const maxTraversal = 10

// FindProjectRoot returns the project root. It checks, in order,
// GREENLEAF_PROJECT_ROOT, the GitHub Actions workspace, the GitLab CI
// project directory and finally walks up from the working directory
// looking for go.mod or .git.
func FindProjectRoot(logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	candidates := []struct {
		source string
		dir    string
		ok     bool
	}{
		{EnvProjectRoot, os.Getenv(EnvProjectRoot), true},
		{EnvGitHubWorkspace, os.Getenv(EnvGitHubWorkspace), IsGitHubActions()},
		{EnvGitLabProjectDir, os.Getenv(EnvGitLabProjectDir), IsGitLabCI()},
	}
	for _, c := range candidates {
		if c.dir == "" || !c.ok {
			continue
		}
		if !isValidProjectRoot(c.dir) {
			return "", fmt.Errorf("%w at %s", ErrInvalidProjectRoot, c.dir)
		}
		logger.Debug("using project root from environment",
			slog.String("source", c.source),
			slog.String("project_root", c.dir))
		return c.dir, nil
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return findProjectRootByTraversal(workingDir, logger)
}

func findProjectRootByTraversal(startDir string, logger *slog.Logger) (string, error) {
	dir := startDir
	for i := 0; i < maxTraversal; i++ {
		if fileExists(filepath.Join(dir, GoModFile)) || dirExists(filepath.Join(dir, GitDirectory)) {
			logger.Debug("found project root", slog.String("project_root", dir))
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w from %s", ErrProjectRootNotFound, startDir)
}

// FindMigrationsDir returns the absolute path of the postgres migrations
// directory.
func FindMigrationsDir(logger *slog.Logger) (string, error) {
	root, err := FindProjectRoot(logger)
	if err != nil {
		return "", fmt.Errorf("failed to find project root: %w", err)
	}

	dir := filepath.Join(root, MigrationsPath)
	if !dirExists(dir) {
		return "", fmt.Errorf("migrations directory not found at %s", dir)
	}
	return dir, nil
}

func isValidProjectRoot(dir string) bool {
	return dirExists(dir) && fileExists(filepath.Join(dir, GoModFile))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
