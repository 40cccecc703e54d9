// Package config loads and validates the docpub configuration file.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/hypersql/docpub/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Setup   SetupConfig   `yaml:"setup"`
	Build   BuildConfig   `yaml:"build"`
	Publish PublishConfig `yaml:"publish"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the documentation checkout being built.
type SiteConfig struct {
	Name      string `yaml:"name"`
	SourceDir string `yaml:"source_dir"` // repository checkout root
	DocsDir   string `yaml:"docs_dir"`   // markdown sources, relative to source_dir
}

// SetupConfig describes environment provisioning before a build.
type SetupConfig struct {
	Runtime        string   `yaml:"runtime"`                   // binary that must be resolvable on PATH
	RuntimeVersion string   `yaml:"runtime_version,omitempty"` // optional pin matched against `<runtime> --version`
	Install        []string `yaml:"install,omitempty"`         // dependency install command (lock-file mode)
}

// BuildConfig describes the external static-site generator invocation.
type BuildConfig struct {
	Command     []string `yaml:"command"`      // generator invocation, argv form
	ArtifactDir string   `yaml:"artifact_dir"` // generated output, relative to source_dir
	Timeout     Duration `yaml:"timeout"`      // wall-clock ceiling per run
}

// PublishConfig describes the conditional publish stage.
type PublishConfig struct {
	Enabled      bool        `yaml:"enabled"`
	Owner        string      `yaml:"owner"`         // canonical repository owner required for publish
	SourceBranch string      `yaml:"source_branch"` // primary integration branch required for publish
	RepoURL      string      `yaml:"repo_url"`      // repository holding the hosting branch
	Branch       string      `yaml:"branch"`        // hosting branch
	Clean        bool        `yaml:"clean"`         // destructive overwrite of hosting branch content
	CommitName   string      `yaml:"commit_name,omitempty"`
	CommitEmail  string      `yaml:"commit_email,omitempty"`
	Auth         *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents git transport authentication configuration
type AuthConfig struct {
	Type     string `yaml:"type"` // "token", "basic", "ssh"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// DaemonConfig configures the long-running trigger listener.
type DaemonConfig struct {
	Listen        string      `yaml:"listen"`
	Schedule      string      `yaml:"schedule"` // cron expression for scheduled builds
	WebhookSecret string      `yaml:"webhook_secret,omitempty"`
	StorePath     string      `yaml:"store_path"` // sqlite run store ("" disables persistence)
	NATS          *NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig configures optional run-summary notifications.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load loads configuration from the specified file.
// Environment variables referenced as ${VAR} in the YAML are expanded, and a
// .env file next to the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, pkgerrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CategoryConfig, pkgerrors.SeverityFatal, "failed to read config file")
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CategoryConfig, pkgerrors.SeverityFatal, "failed to unmarshal config")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.SourceDir == "" {
		c.Site.SourceDir = "."
	}
	if c.Site.DocsDir == "" {
		c.Site.DocsDir = "docs"
	}
	if c.Build.ArtifactDir == "" {
		c.Build.ArtifactDir = "site"
	}
	if c.Build.Timeout <= 0 {
		c.Build.Timeout = Duration(30 * time.Minute)
	}
	if c.Publish.Branch == "" {
		c.Publish.Branch = "gh-pages"
	}
	if c.Publish.SourceBranch == "" {
		c.Publish.SourceBranch = "main"
	}
	if c.Publish.CommitName == "" {
		c.Publish.CommitName = "docpub"
	}
	if c.Publish.CommitEmail == "" {
		c.Publish.CommitEmail = "docpub@localhost"
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":8080"
	}
	if c.Daemon.Schedule == "" {
		// Weekly, Monday 06:00.
		c.Daemon.Schedule = "0 6 * * 1"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return pkgerrors.New(pkgerrors.CategoryConfig, pkgerrors.SeverityFatal,
			"configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath)
	}

	example := `# docpub configuration
site:
  name: sqlt documentation
  source_dir: .
  docs_dir: docs

setup:
  runtime: mkdocs
  install: [pip, install, -r, requirements.txt]

build:
  command: [mkdocs, build, --strict]
  artifact_dir: site
  timeout: 30m

publish:
  enabled: true
  owner: hypersql
  source_branch: main
  repo_url: https://github.com/hypersql/sqlt.git
  branch: gh-pages
  clean: true
  auth:
    type: token
    token: ${DOCPUB_TOKEN}

daemon:
  listen: ":8080"
  schedule: "0 6 * * 1"
  store_path: docpub.db

logging:
  level: info
  format: text
`

	if err := os.WriteFile(configPath, []byte(example), 0o644); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "failed to write config file")
	}
	return nil
}
