package config

import (
	pkgerrors "github.com/hypersql/docpub/internal/errors"
)

// Validate checks configuration invariants after defaults have been applied.
func (c *Config) Validate() error {
	if len(c.Build.Command) == 0 {
		return pkgerrors.ConfigRequired("build.command")
	}

	if c.Publish.Enabled {
		if c.Publish.Owner == "" {
			return pkgerrors.ConfigRequired("publish.owner")
		}
		if c.Publish.RepoURL == "" {
			return pkgerrors.ConfigRequired("publish.repo_url")
		}
		if c.Publish.Branch == c.Publish.SourceBranch {
			return pkgerrors.ValidationFailed("publish.branch",
				"hosting branch must differ from the source branch; publishing would overwrite the sources")
		}
	}

	if c.Publish.Auth != nil {
		switch c.Publish.Auth.Type {
		case "token":
			if c.Publish.Auth.Token == "" {
				return pkgerrors.ConfigRequired("publish.auth.token")
			}
		case "basic":
			if c.Publish.Auth.Username == "" || c.Publish.Auth.Password == "" {
				return pkgerrors.ConfigRequired("publish.auth.username/password")
			}
		case "ssh":
			if c.Publish.Auth.KeyPath == "" {
				return pkgerrors.ConfigRequired("publish.auth.key_path")
			}
		default:
			return pkgerrors.ValidationFailed("publish.auth.type",
				"must be one of token, basic, ssh")
		}
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return pkgerrors.ValidationFailed("logging.format", "must be text or json")
	}

	return nil
}
