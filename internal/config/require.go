package config

import "fmt"

// RequireAccess opens the default store and verifies an account access
// token is available, for control API commands.
func RequireAccess() (*Store, error) {
	store, err := Open(DefaultDir())
	if err != nil {
		return nil, err
	}
	if store.AccessToken() == "" {
		return nil, fmt.Errorf("not logged in — run: beam accounts login <access-token>")
	}
	return store, nil
}

// RequireAppKey opens the default store and verifies a data-plane API key
// is available, for channel and queue commands.
func RequireAppKey() (store *Store, key string, err error) {
	store, err = Open(DefaultDir())
	if err != nil {
		return nil, "", err
	}
	key = store.APIKey()
	if key == "" {
		return nil, "", fmt.Errorf("no API key — select an app with 'beam apps switch' or set BEAM_API_KEY")
	}
	return store, key, nil
}
