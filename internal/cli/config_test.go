package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaultsFromEnv() {
	s.T().Setenv("TTT_SERVER", "https://ttt.example.com")
	s.T().Setenv("TTT_TOKEN", "abc")
	s.T().Setenv("TTT_TOKEN_FILE", "/tmp/ttt-token")

	c := DefaultConfig()
	s.Equal("https://ttt.example.com", c.ServerURL)
	s.Equal("abc", c.Token)
	s.Equal("/tmp/ttt-token", c.TokenFile)
	s.Equal("text", c.Output)
}

func (s *ConfigSuite) TestWebSocketURL() {
	tests := []struct {
		server string
		want   string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"http://localhost:8080/", "ws://localhost:8080/ws"},
		{"https://ttt.example.com", "wss://ttt.example.com/ws"},
	}
	for _, tt := range tests {
		c := &Config{ServerURL: tt.server}
		s.Equal(tt.want, c.WebSocketURL(), tt.server)
	}
}

func (s *ConfigSuite) TestTokenRoundTrip() {
	c := &Config{TokenFile: filepath.Join(s.T().TempDir(), "nested", "token")}

	// Missing file is not an error
	s.Require().NoError(c.LoadToken())
	s.Empty(c.Token)

	s.Require().NoError(c.SaveToken("secret-token"))

	info, err := os.Stat(c.TokenFile)
	s.Require().NoError(err)
	s.Equal(os.FileMode(0600), info.Mode().Perm())

	loaded := &Config{TokenFile: c.TokenFile}
	s.Require().NoError(loaded.LoadToken())
	s.Equal("secret-token", loaded.Token)

	s.Require().NoError(loaded.ClearToken())
	s.Empty(loaded.Token)
	_, err = os.Stat(c.TokenFile)
	s.True(os.IsNotExist(err))

	// Clearing twice is fine
	s.NoError(loaded.ClearToken())
}

func (s *ConfigSuite) TestExplicitTokenWins() {
	path := filepath.Join(s.T().TempDir(), "token")
	s.Require().NoError(os.WriteFile(path, []byte("from-file\n"), 0600))

	c := &Config{Token: "from-flag", TokenFile: path}
	s.Require().NoError(c.LoadToken())
	s.Equal("from-flag", c.Token)

	c = &Config{TokenFile: path}
	s.Require().NoError(c.LoadToken())
	s.Equal("from-file", c.Token)
}
