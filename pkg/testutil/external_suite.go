// Package testutil holds shared fixtures for integration suites that call live services.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"
)

// ExternalDependenciesSuite loads provider keys from SETTINGS_FILE, or
// $HOME/.env when that is unset, before the suite runs.
type ExternalDependenciesSuite struct {
	suite.Suite
}

func (s *ExternalDependenciesSuite) SetupSuite() {
	path, explicit := settingsPath()
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return
		}
		s.Require().NoError(err)
	}
	s.Require().NoError(godotenv.Overload(path), path)
}

// settingsPath reports the env file to load and whether it was named explicitly.
func settingsPath() (string, bool) {
	if path := strings.TrimSpace(os.Getenv("SETTINGS_FILE")); path != "" {
		return path, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".env"), false
}

// RequireEnv returns the trimmed value of name, skipping the suite when it is empty.
func (s *ExternalDependenciesSuite) RequireEnv(name string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		s.T().Skipf("%s is not set; skipping external dependency integration test", name)
	}
	return value
}

// AudioFixture returns the recording named by VOXSYN_AUDIO_FIXTURE, skipping
// when it is unset or unreadable.
func (s *ExternalDependenciesSuite) AudioFixture() string {
	path := s.RequireEnv("VOXSYN_AUDIO_FIXTURE")
	if _, err := os.Stat(path); err != nil {
		s.T().Skipf("%s is not accessible (%v); skipping audio integration test", path, err)
	}
	return path
}
