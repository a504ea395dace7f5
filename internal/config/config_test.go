package config

import (
	"strings"
	"testing"
)

func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(fakeEnv(nil))

	if cfg.MongoDatabase != "expense_tracker" {
		t.Errorf("MongoDatabase = %q, want expense_tracker", cfg.MongoDatabase)
	}
	if cfg.MongoCollection != "expenses" {
		t.Errorf("MongoCollection = %q, want expenses", cfg.MongoCollection)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q, want gemini-2.5-flash", cfg.GeminiModel)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DataBackend != "mongo" {
		t.Errorf("DataBackend = %q, want mongo", cfg.DataBackend)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg := Load(fakeEnv(map[string]string{
		"PORT":         "9090",
		"DATA_BACKEND": "memory",
		"MONGO_URI":    "mongodb://localhost:27017",
	}))

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q, want memory", cfg.DataBackend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid mongo backend",
			mutate: func(c *Config) { c.MongoURI = "mongodb://localhost:27017" },
		},
		{
			name:   "valid memory backend",
			mutate: func(c *Config) { c.DataBackend = "memory" },
		},
		{
			name:    "mongo backend without URI",
			mutate:  func(c *Config) {},
			wantErr: "MONGO_URI is required",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.DataBackend = "postgres" },
			wantErr: "invalid data backend",
		},
		{
			name: "non-numeric port",
			mutate: func(c *Config) {
				c.DataBackend = "memory"
				c.Port = "eighty"
			},
			wantErr: "invalid port",
		},
		{
			name: "port out of range",
			mutate: func(c *Config) {
				c.DataBackend = "memory"
				c.Port = "70000"
			},
			wantErr: "invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load(fakeEnv(nil))
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
