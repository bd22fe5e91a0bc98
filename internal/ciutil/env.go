package ciutil

import (
	"log/slog"
	"os"
)

// Environment variables read by this package.
const (
	EnvCI               = "CI"
	EnvGitHubActions    = "GITHUB_ACTIONS"
	EnvGitHubWorkspace  = "GITHUB_WORKSPACE"
	EnvGitLabCI         = "GITLAB_CI"
	EnvGitLabProjectDir = "CI_PROJECT_DIR"

	EnvProjectRoot = "GREENLEAF_PROJECT_ROOT"

	EnvTestDatabaseURL = "GREENLEAF_TEST_DB_URL"
	EnvDatabaseURL     = "GREENLEAF_DATABASE_URL"
	EnvGenericDBURL    = "DATABASE_URL"
)

// IsCI reports whether the process runs under a CI provider.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != ""
}

// IsGitHubActions reports whether the process runs in GitHub Actions with a
// workspace.
func IsGitHubActions() bool {
	return os.Getenv(EnvGitHubActions) != "" && os.Getenv(EnvGitHubWorkspace) != ""
}

// IsGitLabCI reports whether the process runs in GitLab CI with a project
// directory.
func IsGitLabCI() bool {
	return os.Getenv(EnvGitLabCI) != "" && os.Getenv(EnvGitLabProjectDir) != ""
}

// GetEnvWithFallbacks returns the first non-empty variable in envVars, or
// defaultValue.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for _, name := range envVars {
		if value := os.Getenv(name); value != "" {
			if logger != nil {
				logger.Debug("using environment variable", slog.String("name", name))
			}
			return value
		}
	}
	return defaultValue
}

// TestDatabaseURL returns the database integration tests should use. A
// dedicated test URL wins; in CI the application URLs are accepted too.
func TestDatabaseURL(logger *slog.Logger) string {
	names := []string{EnvTestDatabaseURL}
	if IsCI() {
		names = append(names, EnvDatabaseURL, EnvGenericDBURL)
	}
	return GetEnvWithFallbacks(names, "", logger)
}
