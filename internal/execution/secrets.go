package execution

import (
	"fmt"
	"os"
)

// SecretProvider resolves named exchange credentials. Section 6's config
// keys (apiKeyName/apiSecretName) name which secret to load; the backend
// that stores those secrets is explicitly out of scope (section 1) - this
// default implementation reads them from the process environment, which is
// the grounding the teacher's own config loader already assumes for
// Binance API credentials.
type SecretProvider interface {
	Get(name string) (string, error)
}

// EnvSecretProvider resolves secret names as environment variable names.
type EnvSecretProvider struct{}

func (EnvSecretProvider) Get(name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", fmt.Errorf("secret %q not set", name)
	}
	return v, nil
}
