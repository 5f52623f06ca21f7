// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "journal-club/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FullTextBackend selects how a paper's full text is produced.
type FullTextBackend string

const (
	FullTextMarkitdown FullTextBackend = "markitdown"
	FullTextPdftotext  FullTextBackend = "pdftotext"
	FullTextAbstract   FullTextBackend = "abstract"
)

// RepositoryConfig holds settings for the paper repository client.
type RepositoryConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Category is the listing category discussed each day (e.g. "hep-ph").
	Category string `json:"category" yaml:"category" mapstructure:"category" validate:"required"`

	// MaxResults bounds the listing request (default 200).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=1"`

	// FullText selects the full-text backend: markitdown, pdftotext, or abstract.
	FullText FullTextBackend `json:"full_text" yaml:"full_text" mapstructure:"full_text" validate:"oneof=markitdown pdftotext abstract"`

	// MaxFullTextChars truncates converted text; 0 keeps everything.
	MaxFullTextChars int `json:"max_fulltext_chars" yaml:"max_fulltext_chars" mapstructure:"max_fulltext_chars" validate:"gte=0"`
}

// ModelTier names one configured model endpoint.
type ModelTier string

const (
	TierFast     ModelTier = "fast"
	TierBalanced ModelTier = "balanced"
	TierDeep     ModelTier = "deep"
)

// Provider identifies the API a model endpoint speaks.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAzure     Provider = "azure"
	ProviderAnthropic Provider = "anthropic"
)

// ModelEndpoint configures one model tier.
type ModelEndpoint struct {
	// Provider is openai, azure, or anthropic.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider" validate:"oneof=openai azure anthropic"`

	// Model is the model name, or the deployment name for azure.
	Model string `json:"model" yaml:"model" mapstructure:"model" validate:"required"`

	// BaseURL overrides the provider endpoint. Required for azure.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url" validate:"required_if=Provider azure"`

	// APIVersion is the azure api-version query parameter.
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty" mapstructure:"api_version" validate:"required_if=Provider azure"`

	// APIKey authenticates against the provider.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key" validate:"required"`

	// MaxTokens caps the completion length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`

	// Timeout bounds one model call; 0 leaves it to the context.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the provider client's retry count (default 0).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// RoleBindings maps each role to a model tier.
type RoleBindings struct {
	Selector ModelTier `json:"selector" yaml:"selector" mapstructure:"selector" validate:"oneof=fast balanced deep"`
	Student  ModelTier `json:"student" yaml:"student" mapstructure:"student" validate:"oneof=fast balanced deep"`
	// Postdoc must differ from Student so the critic is a different model.
	Postdoc    ModelTier `json:"postdoc" yaml:"postdoc" mapstructure:"postdoc" validate:"oneof=fast balanced deep,nefield=Student"`
	Staff      ModelTier `json:"staff" yaml:"staff" mapstructure:"staff" validate:"oneof=fast balanced deep"`
	Translator ModelTier `json:"translator" yaml:"translator" mapstructure:"translator" validate:"oneof=fast balanced deep"`
}

// ModelsConfig holds the three model tiers and the role bindings.
type ModelsConfig struct {
	// Tiers are validated individually, and only when a role is bound to them.
	Fast     ModelEndpoint `json:"fast" yaml:"fast" mapstructure:"fast" validate:"-"`
	Balanced ModelEndpoint `json:"balanced" yaml:"balanced" mapstructure:"balanced" validate:"-"`
	Deep     ModelEndpoint `json:"deep" yaml:"deep" mapstructure:"deep" validate:"-"`
	Roles    RoleBindings  `json:"roles" yaml:"roles" mapstructure:"roles"`
}

// Endpoint returns the endpoint configured for tier.
func (m ModelsConfig) Endpoint(tier ModelTier) (ModelEndpoint, bool) {
	switch tier {
	case TierFast:
		return m.Fast, true
	case TierBalanced:
		return m.Balanced, true
	case TierDeep:
		return m.Deep, true
	default:
		return ModelEndpoint{}, false
	}
}

// SlackConfig holds the messaging settings.
type SlackConfig struct {
	// Token is the bot token (xoxb-...).
	Token string `json:"-" yaml:"-" mapstructure:"token"`

	// TeamID scopes channel lookup on enterprise grid workspaces.
	TeamID string `json:"team_id,omitempty" yaml:"team_id,omitempty" mapstructure:"team_id"`

	// Channel is the channel name (without '#') discussions are posted to.
	Channel string `json:"channel" yaml:"channel" mapstructure:"channel" validate:"required"`

	// AttachTranscript uploads a Markdown transcript into each thread.
	AttachTranscript bool `json:"attach_transcript" yaml:"attach_transcript" mapstructure:"attach_transcript"`

	// APIURL overrides the Slack Web API base URL.
	APIURL string `json:"api_url,omitempty" yaml:"api_url,omitempty" mapstructure:"api_url" validate:"omitempty,url"`
}

// PacingConfig holds the minimum intervals between dependent external calls.
type PacingConfig struct {
	// DiscussionInterval is waited before each paper's discussion (default 3s).
	DiscussionInterval time.Duration `json:"discussion_interval" yaml:"discussion_interval" mapstructure:"discussion_interval"`

	// ReplyInterval is waited between thread replies (default 1s).
	ReplyInterval time.Duration `json:"reply_interval" yaml:"reply_interval" mapstructure:"reply_interval"`
}

// ArchiveConfig controls the run archive.
type ArchiveConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path" validate:"required_if=Enabled true"`
}

// MetricsConfig controls the metrics textfile.
type MetricsConfig struct {
	// Textfile is written in the Prometheus text format on exit when set.
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty" mapstructure:"textfile"`
}

// LoggingConfig controls the root logger.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=json console pretty"`
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"oneof=stdout stderr"`
}

// Config groups all settings of the journal club bot.
type Config struct {
	Repository RepositoryConfig `json:"repository" yaml:"repository" mapstructure:"repository"`
	Models     ModelsConfig     `json:"models" yaml:"models" mapstructure:"models"`
	Slack      SlackConfig      `json:"slack" yaml:"slack" mapstructure:"slack"`
	Pacing     PacingConfig     `json:"pacing" yaml:"pacing" mapstructure:"pacing"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive" mapstructure:"archive"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`

	// Interests replaces the subject inclusion/exclusion policy given to the
	// selector when set.
	Interests string `json:"interests,omitempty" yaml:"interests,omitempty" mapstructure:"interests"`
}
