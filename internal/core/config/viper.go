package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*PolicyAPIConfig, error) {
	v := viper.New()

	d := DefaultPolicyAPIConfig()
	v.SetDefault("policy_api.host", d.Host)
	v.SetDefault("policy_api.port", d.Port)
	v.SetDefault("policy_api.metrics_port", d.MetricsPort)
	v.SetDefault("policy_api.max_connections", d.MaxConnections)
	v.SetDefault("policy_api.request_timeout", d.RequestTimeout.String())
	v.SetDefault("policy_api.max_batch_size", d.MaxBatchSize)
	v.SetDefault("policy_api.rules_file", d.RulesFile)

	// NK_POLICY_API_PORT overrides policy_api.port
	v.SetEnvPrefix("NK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets are environment-only.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &PolicyAPIConfig{
		Host:           v.GetString("policy_api.host"),
		Port:           v.GetInt("policy_api.port"),
		MetricsPort:    v.GetInt("policy_api.metrics_port"),
		MaxConnections: v.GetInt("policy_api.max_connections"),
		RequestTimeout: v.GetDuration("policy_api.request_timeout"),
		MaxBatchSize:   v.GetInt("policy_api.max_batch_size"),
		RulesFile:      v.GetString("policy_api.rules_file"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port ranges and positive limits.
func validateConfig(cfg *PolicyAPIConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("metrics_port must be between 0 and 65535, got %d", cfg.MetricsPort)
	}
	if cfg.MetricsPort == cfg.Port {
		return fmt.Errorf("metrics_port must differ from port %d", cfg.Port)
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", cfg.MaxConnections)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", cfg.MaxBatchSize)
	}
	return nil
}

func validateNoSecretsInConfig(v *viper.Viper) error {
	// InConfig ignores the environment, where NK_HMAC_SECRET legitimately lives.
	if v.InConfig("hmac_secret") || v.InConfig("policy_api.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use NK_HMAC_SECRET environment variable)")
	}
	return nil
}
