// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles types.Config from defaults, a YAML file,
// .secrets/ files and environment variables, and validates it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/journal-club/internal/secrets"
	"github.com/pdiddy/journal-club/pkg/types"
)

const (
	// Name is the config file base name and the ~/.config subdirectory.
	Name = "journal-club"

	// EnvPrefix prefixes every environment override (JOURNAL_CLUB_SLACK_CHANNEL).
	EnvPrefix = "JOURNAL_CLUB"

	// DefaultUserAgent identifies the bot to arXiv.
	DefaultUserAgent = "journal-club/0.1 (+https://github.com/pdiddy/journal-club)"
)

var tiers = []types.ModelTier{types.TierFast, types.TierBalanced, types.TierDeep}

// defaults are the settings used when neither file nor environment sets a key.
var defaults = map[string]any{
	"repository.category":           "hep-ph",
	"repository.max_results":        200,
	"repository.full_text":          string(types.FullTextMarkitdown),
	"repository.timeout":            60 * time.Second,
	"repository.user_agent":         DefaultUserAgent,
	"repository.max_fulltext_chars": 200000,

	"models.roles.selector":   string(types.TierFast),
	"models.roles.student":    string(types.TierFast),
	"models.roles.postdoc":    string(types.TierBalanced),
	"models.roles.staff":      string(types.TierFast),
	"models.roles.translator": string(types.TierFast),

	"slack.channel":           "journal-club",
	"slack.team_id":           "",
	"slack.token":             "",
	"slack.attach_transcript": false,
	"slack.api_url":           "",

	"pacing.discussion_interval": 3 * time.Second,
	"pacing.reply_interval":      time.Second,

	"archive.enabled": false,
	"archive.path":    "journal-club.db",

	"metrics.textfile": "",

	"logging.level":  "info",
	"logging.format": "console",
	"logging.output": "stderr",

	"interests": "",
}

// legacyEnv maps keys to the environment names the bot has always read.
var legacyEnv = map[string][]string{
	"models.fast.api_key":         {"AZURE_OPENAI_API_KEY"},
	"models.balanced.api_key":     {"AZURE_OPENAI_API_KEY"},
	"models.deep.api_key":         {"AZURE_OPENAI_API_KEY"},
	"models.fast.base_url":        {"AZURE_OPENAI_API_BASE"},
	"models.balanced.base_url":    {"AZURE_OPENAI_API_BASE"},
	"models.deep.base_url":        {"AZURE_OPENAI_API_BASE"},
	"models.fast.api_version":     {"AZURE_OPENAI_API_VERSION"},
	"models.balanced.api_version": {"AZURE_OPENAI_API_VERSION"},
	"models.deep.api_version":     {"AZURE_OPENAI_API_VERSION"},
	"models.fast.model":           {"AZURE_OPENAI_FAST_DEPLOYMENT_NAME"},
	"models.balanced.model":       {"AZURE_OPENAI_BALANCED_DEPLOYMENT_NAME"},
	"models.deep.model":           {"AZURE_OPENAI_DEEP_DEPLOYMENT_NAME"},
	"slack.token":                 {"SLACK_BOT_TOKEN"},
	"slack.team_id":               {"SLACK_TEAM_ID"},
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	for _, tier := range tiers {
		prefix := "models." + string(tier) + "."
		v.SetDefault(prefix+"provider", string(types.ProviderAzure))
		v.SetDefault(prefix+"model", "")
		v.SetDefault(prefix+"base_url", "")
		v.SetDefault(prefix+"api_version", "2024-10-21")
		v.SetDefault(prefix+"api_key", "")
		v.SetDefault(prefix+"max_tokens", 4096)
		v.SetDefault(prefix+"timeout", 5*time.Minute)
		v.SetDefault(prefix+"max_retries", 0)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		// BindEnv only fails without a key.
		_ = v.BindEnv(append([]string{key, envName}, names...)...)
	}
	return v
}

// ReadFile loads cfgFile, or searches ./journal-club.yaml and
// ~/.config/journal-club/config.yaml when cfgFile is empty. A missing file
// in the search path is not an error. It returns the file used, if any.
func ReadFile(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(Name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", Name))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load unmarshals v, fills empty credentials from sec and validates the result.
func Load(v *viper.Viper, sec map[string]string) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	ApplySecrets(&cfg, sec)
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// secretFor names the secrets file holding a provider's API key.
var secretFor = map[types.Provider]string{
	types.ProviderAzure:     secrets.AzureOpenAIKey,
	types.ProviderOpenAI:    secrets.OpenAIKey,
	types.ProviderAnthropic: secrets.AnthropicKey,
}

// ApplySecrets fills credentials that file and environment left empty.
func ApplySecrets(cfg *types.Config, sec map[string]string) {
	for _, ep := range []*types.ModelEndpoint{&cfg.Models.Fast, &cfg.Models.Balanced, &cfg.Models.Deep} {
		if ep.APIKey == "" {
			ep.APIKey = sec[secretFor[ep.Provider]]
		}
	}
	if cfg.Slack.Token == "" {
		cfg.Slack.Token = sec[secrets.SlackBotToken]
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks cfg and every model tier a role is bound to.
func Validate(cfg types.Config) error {
	var errs []string
	if err := validate.Struct(cfg); err != nil {
		errs = append(errs, describe(err, "")...)
	}
	for _, tier := range BoundTiers(cfg.Models.Roles) {
		ep, ok := cfg.Models.Endpoint(tier)
		if !ok {
			continue
		}
		if err := validate.Struct(ep); err != nil {
			errs = append(errs, describe(err, "models."+string(tier))...)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// BoundTiers returns the distinct valid tiers referenced by roles, in
// fast, balanced, deep order.
func BoundTiers(r types.RoleBindings) []types.ModelTier {
	used := map[types.ModelTier]bool{
		r.Selector: true, r.Student: true, r.Postdoc: true, r.Staff: true, r.Translator: true,
	}
	var out []types.ModelTier
	for _, t := range tiers {
		if used[t] {
			out = append(out, t)
		}
	}
	return out
}

func describe(err error, prefix string) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Drop the root struct name from the namespace.
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if prefix != "" {
			field = prefix + "." + field
		}
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			out = append(out, fmt.Sprintf("%s fails %s", field, fe.Tag()))
		}
	}
	return out
}
