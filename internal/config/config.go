// Package config manages beam CLI configuration: accounts, apps, and API
// keys, persisted as TOML under ~/.beam.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const configFile = "config.toml"

// Accessor is the narrow read-only view of the store consumed by the
// interactive shell to build its prompt and session context.
type Accessor interface {
	CurrentAccount() string
	CurrentAppID() string
	AppName(appID string) string
	APIKey() string
	AccessToken() string
}

// Store is the TOML-backed account/app/key store.
type Store struct {
	v    *viper.Viper
	path string
}

// DefaultDir returns the beam config directory, honoring BEAM_CONFIG_DIR.
func DefaultDir() string {
	if dir := os.Getenv("BEAM_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".beam"
	}
	return filepath.Join(home, ".beam")
}

// Open loads the store from dir, creating an empty store when no config file
// exists yet.
func Open(dir string) (*Store, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	v.SetDefault("current_account", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Store{v: v, path: filepath.Join(dir, configFile)}, nil
}

// Path returns the config file path, whether or not the file exists yet.
func (s *Store) Path() string { return s.path }

// Save writes the store back to disk, creating the directory if needed.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return s.v.WriteConfigAs(s.path)
}

// Reload re-reads the config file from disk, discarding in-memory changes.
// Missing files are not an error; the store simply keeps its current state.
func (s *Store) Reload() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	s.v.SetConfigFile(s.path)
	return s.v.ReadInConfig()
}

// CurrentAccount returns the selected account alias, or "" when logged out.
func (s *Store) CurrentAccount() string {
	return s.v.GetString("current_account")
}

// SetCurrentAccount selects an account alias.
func (s *Store) SetCurrentAccount(name string) {
	s.v.Set("current_account", name)
}

// SetAccount stores an account's access token and selects it.
func (s *Store) SetAccount(name, accessToken string) {
	s.v.Set("accounts."+name+".access_token", accessToken)
	s.v.Set("current_account", name)
}

// RemoveAccount clears an account's stored credentials. The current account
// selection is reset when it pointed at the removed account.
func (s *Store) RemoveAccount(name string) {
	s.v.Set("accounts."+name+".access_token", "")
	s.v.Set("accounts."+name+".current_app", "")
	if s.CurrentAccount() == name {
		s.v.Set("current_account", "")
	}
}

// Accounts returns the stored account aliases.
func (s *Store) Accounts() []string {
	m := s.v.GetStringMap("accounts")
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

// AccessToken returns the current account's control API token. The
// BEAM_ACCESS_TOKEN environment variable takes precedence.
func (s *Store) AccessToken() string {
	if tok := os.Getenv("BEAM_ACCESS_TOKEN"); tok != "" {
		return tok
	}
	acct := s.CurrentAccount()
	if acct == "" {
		return ""
	}
	return s.v.GetString("accounts." + acct + ".access_token")
}

// CurrentAppID returns the selected app for the current account.
func (s *Store) CurrentAppID() string {
	acct := s.CurrentAccount()
	if acct == "" {
		return ""
	}
	return s.v.GetString("accounts." + acct + ".current_app")
}

// SetCurrentApp selects an app and records its display name.
func (s *Store) SetCurrentApp(appID, name string) {
	acct := s.CurrentAccount()
	if acct == "" {
		return
	}
	s.v.Set("accounts."+acct+".current_app", appID)
	if name != "" {
		s.v.Set("accounts."+acct+".apps."+appID+".name", name)
	}
}

// AppName returns the recorded display name for an app id, or the id itself
// when no name is known.
func (s *Store) AppName(appID string) string {
	acct := s.CurrentAccount()
	if acct == "" || appID == "" {
		return appID
	}
	if name := s.v.GetString("accounts." + acct + ".apps." + appID + ".name"); name != "" {
		return name
	}
	return appID
}

// SetAppKey stores the API key used for data-plane calls against an app.
func (s *Store) SetAppKey(appID, key string) {
	acct := s.CurrentAccount()
	if acct == "" {
		return
	}
	s.v.Set("accounts."+acct+".apps."+appID+".api_key", key)
}

// APIKey returns the API key for the current app. The BEAM_API_KEY
// environment variable takes precedence over the stored key.
func (s *Store) APIKey() string {
	if key := os.Getenv("BEAM_API_KEY"); key != "" {
		return key
	}
	acct := s.CurrentAccount()
	app := s.CurrentAppID()
	if acct == "" || app == "" {
		return ""
	}
	return s.v.GetString("accounts." + acct + ".apps." + app + ".api_key")
}

// Get reads an arbitrary dotted key, for `beam config show`.
func (s *Store) Get(key string) any { return s.v.Get(key) }

// Set writes an arbitrary dotted key, for `beam config set`.
func (s *Store) Set(key string, value any) { s.v.Set(key, value) }

// AllSettings returns the full settings tree.
func (s *Store) AllSettings() map[string]any { return s.v.AllSettings() }
