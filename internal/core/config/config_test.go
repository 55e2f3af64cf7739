package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	testSecretID   = "0123456789abcdef0123456789abcdef"
	testSecretB64  = "dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
	otherSecretB64 = "YW5vdGhlcnNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "namekeeper.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHMACSecrets(t *testing.T) {
	t.Run("none set", func(t *testing.T) {
		t.Setenv("NK_HMAC_SECRET", "")
		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 0 {
			t.Errorf("len(secrets) = %d, want 0", len(secrets))
		}
	})

	t.Run("single secret", func(t *testing.T) {
		t.Setenv("NK_HMAC_SECRET", testSecretID+":"+testSecretB64)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 1 {
			t.Errorf("len(secrets) = %d, want 1", len(secrets))
		}
		if got := string(secrets[testSecretID]); got != "testsecret1234567890abcdefghijklmnop" {
			t.Errorf("secret = %q", got)
		}
	})

	t.Run("numbered secrets for rotation", func(t *testing.T) {
		t.Setenv("NK_HMAC_SECRET_1", testSecretID+":"+testSecretB64)
		t.Setenv("NK_HMAC_SECRET_2", "fedcba9876543210fedcba9876543210:"+otherSecretB64)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 2 {
			t.Errorf("len(secrets) = %d, want 2", len(secrets))
		}
	})

	t.Run("numbering stops at first gap", func(t *testing.T) {
		t.Setenv("NK_HMAC_SECRET_1", testSecretID+":"+testSecretB64)
		t.Setenv("NK_HMAC_SECRET_3", "fedcba9876543210fedcba9876543210:"+otherSecretB64)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 1 {
			t.Errorf("len(secrets) = %d, want 1", len(secrets))
		}
	})

	errCases := []struct {
		name string
		env  map[string]string
	}{
		{"invalid format", map[string]string{"NK_HMAC_SECRET": "invalid_format"}},
		{"short secret_id", map[string]string{"NK_HMAC_SECRET": "short:" + testSecretB64}},
		{"non-hex secret_id", map[string]string{"NK_HMAC_SECRET": "0123456789abcdefGHIJKLMNOPQRSTUV:" + testSecretB64}},
		{"duplicate numbered", map[string]string{
			"NK_HMAC_SECRET_1": testSecretID + ":" + testSecretB64,
			"NK_HMAC_SECRET_2": testSecretID + ":" + otherSecretB64,
		}},
		{"duplicate single and numbered", map[string]string{
			"NK_HMAC_SECRET":   testSecretID + ":" + testSecretB64,
			"NK_HMAC_SECRET_1": testSecretID + ":" + otherSecretB64,
		}},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := HMACSecrets(); err == nil {
				t.Error("HMACSecrets succeeded, want error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		want := DefaultPolicyAPIConfig()
		if *cfg != *want {
			t.Errorf("LoadConfig(\"\") = %+v, want %+v", *cfg, *want)
		}
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
		}
	})

	t.Run("config file", func(t *testing.T) {
		path := writeConfig(t, `policy_api:
  host: "127.0.0.1"
  port: 7000
  request_timeout: 5s
  rules_file: ./naming.yaml
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Host != "127.0.0.1" || cfg.Port != 7000 {
			t.Errorf("address = %s:%d, want 127.0.0.1:7000", cfg.Host, cfg.Port)
		}
		if cfg.RequestTimeout != 5*time.Second {
			t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
		}
		if cfg.RulesFile != "./naming.yaml" {
			t.Errorf("RulesFile = %q, want ./naming.yaml", cfg.RulesFile)
		}
	})

	t.Run("environment overrides config file", func(t *testing.T) {
		t.Setenv("NK_POLICY_API_PORT", "8080")
		path := writeConfig(t, "policy_api:\n  port: 7000\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Port != 8080 {
			t.Errorf("Port = %d, want 8080", cfg.Port)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("LoadConfig succeeded, want error")
		}
	})

	t.Run("hmac secret in config file rejected", func(t *testing.T) {
		path := writeConfig(t, `policy_api:
  port: 7000
  hmac_secret: "should_be_rejected"
`)
		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("LoadConfig succeeded, want error")
		}
		if !strings.Contains(err.Error(), "NK_HMAC_SECRET") {
			t.Errorf("error = %v, want mention of NK_HMAC_SECRET", err)
		}
	})

	t.Run("hmac secret in environment accepted", func(t *testing.T) {
		t.Setenv("NK_HMAC_SECRET", testSecretID+":"+testSecretB64)
		if _, err := LoadConfig(""); err != nil {
			t.Errorf("LoadConfig failed: %v", err)
		}
	})

	invalid := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "NK_POLICY_API_PORT", "70000"},
		{"negative metrics port", "NK_POLICY_API_METRICS_PORT", "-1"},
		{"metrics port equals port", "NK_POLICY_API_METRICS_PORT", "50061"},
		{"negative max connections", "NK_POLICY_API_MAX_CONNECTIONS", "-1"},
		{"zero batch size", "NK_POLICY_API_MAX_BATCH_SIZE", "0"},
		{"zero timeout", "NK_POLICY_API_REQUEST_TIMEOUT", "0s"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := LoadConfig(""); err == nil {
				t.Errorf("LoadConfig with %s=%s succeeded, want error", tc.key, tc.val)
			}
		})
	}
}

func TestParseHMACSecret(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", testSecretB64, false},
		{"surrounding whitespace", "  " + testSecretB64 + "\n", false},
		{"invalid base64", "not-valid-base64!!!", true},
		{"too short", "c2hvcnQ=", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			secret, err := ParseHMACSecret(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseHMACSecret(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && len(secret) < 32 {
				t.Errorf("len(secret) = %d, want >= 32", len(secret))
			}
		})
	}
}

func TestParseHMACSecretWithID(t *testing.T) {
	id, secret, err := ParseHMACSecretWithID(testSecretID + ":" + testSecretB64)
	if err != nil {
		t.Fatalf("ParseHMACSecretWithID failed: %v", err)
	}
	if id != testSecretID {
		t.Errorf("secret_id = %s, want %s", id, testSecretID)
	}
	if len(secret) == 0 {
		t.Error("secret is empty")
	}

	for _, in := range []string{
		testSecretID,
		"tooshort:" + testSecretB64,
		"0123456789ABCDEF0123456789ABCDEF:" + testSecretB64,
		testSecretID + ":c2hvcnQ=",
	} {
		if _, _, err := ParseHMACSecretWithID(in); err == nil {
			t.Errorf("ParseHMACSecretWithID(%q) succeeded, want error", in)
		}
	}
}
