package publish

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/hypersql/docpub/internal/config"
)

// buildAuth creates a go-git AuthMethod from the publish auth configuration.
// A nil config means unauthenticated transport (local paths, public remotes).
func buildAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	if authCfg == nil {
		return nil, nil
	}

	switch authCfg.Type {
	case "token":
		// Forge HTTP token auth: the token rides as the basic-auth password,
		// the username is ignored by GitHub/GitLab/Forgejo but must be non-empty.
		username := authCfg.Username
		if username == "" {
			username = "docpub"
		}
		return &http.BasicAuth{Username: username, Password: authCfg.Token}, nil

	case "basic":
		return &http.BasicAuth{Username: authCfg.Username, Password: authCfg.Password}, nil

	case "ssh":
		keys, err := ssh.NewPublicKeysFromFile("git", authCfg.KeyPath, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load SSH key %s: %w", authCfg.KeyPath, err)
		}
		return keys, nil

	default:
		return nil, fmt.Errorf("unsupported auth type %q", authCfg.Type)
	}
}
