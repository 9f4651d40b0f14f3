package tokenstore

import "os"

const (
	// EnvAccessToken and EnvVariant expose a token supplied by the environment
	// under the name "env".
	EnvAccessToken = "GRAPHKIT_ACCESS_TOKEN"
	EnvVariant     = "GRAPHKIT_VARIANT"
	EnvAppID       = "GRAPHKIT_APP_ID"

	envTokenName = "env"
)

// EnvironmentStore is a read-only store over GRAPHKIT_ACCESS_TOKEN.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Save(token *StoredToken) error {
	return ErrStoreUnavailable
}

// Load answers for the name "env" (or "") when the variable is set.
func (e *EnvironmentStore) Load(name string) (*StoredToken, error) {
	token := os.Getenv(EnvAccessToken)
	if token == "" || (name != "" && name != envTokenName) {
		return nil, ErrTokenNotFound
	}
	variant := os.Getenv(EnvVariant)
	if variant == "" {
		variant = "facebook"
	}
	return &StoredToken{
		Name:        envTokenName,
		Variant:     variant,
		AppID:       os.Getenv(EnvAppID),
		AccessToken: token,
	}, nil
}

func (e *EnvironmentStore) List() ([]*StoredToken, error) {
	t, err := e.Load(envTokenName)
	if err != nil {
		return []*StoredToken{}, nil
	}
	return []*StoredToken{t}, nil
}

func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Load(name)
	return err == nil
}
