package config

import (
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("remote:\n  base_url: http://worker.local\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Environment != "development" {
		t.Fatalf("unexpected environment %q", c.Environment)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
	if c.Remote.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", c.Remote.Timeout)
	}
	if c.Pipeline.DefaultRange != "week" || c.Pipeline.PriceLookbackDays != 0 {
		t.Fatalf("unexpected pipeline %+v", c.Pipeline)
	}
	if c.Session.TTL != 30*time.Minute {
		t.Fatalf("unexpected session ttl %v", c.Session.TTL)
	}
	if c.Server.WriteTimeout <= 2*c.Remote.Timeout {
		t.Fatalf("write timeout %v does not cover two remote rounds of %v", c.Server.WriteTimeout, c.Remote.Timeout)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	raw := `
environment: production
remote:
  base_url: https://worker.example
  timeout: 5s
pipeline:
  price_lookback_days: 5
  default_range: month
`
	c, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Environment != "production" || c.Remote.Timeout != 5*time.Second {
		t.Fatalf("unexpected config %+v", c)
	}
	if c.Pipeline.PriceLookbackDays != 5 || c.Pipeline.DefaultRange != "month" {
		t.Fatalf("unexpected pipeline %+v", c.Pipeline)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"missing base url":        "environment: dev\n",
		"bad range":               "remote:\n  base_url: http://x\npipeline:\n  default_range: decade\n",
		"negative lookback":       "remote:\n  base_url: http://x\npipeline:\n  price_lookback_days: -1\n",
		"collector without kafka": "remote:\n  base_url: http://x\nlogging:\n  collector:\n    enabled: true\n",
		"zero cleanup interval":   "remote:\n  base_url: http://x\nsession:\n  cleanup_interval: 0s\n",
		"write timeout too short": "remote:\n  base_url: http://x\n  timeout: 30s\nserver:\n  write_timeout: 60s\n",
		"zero remote timeout":     "remote:\n  base_url: http://x\n  timeout: 0s\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte("remote:\n  base_url: http://x\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env := map[string]string{
		"NEWSIMPACT_REMOTE_BASE_URL": "http://override",
		"KAFKA_BROKERS":              "a:9092,b:9092",
		"REDIS_ADDR":                 "redis:6379",
	}
	c.applyEnv(func(k string) string { return env[k] })
	if c.Remote.BaseURL != "http://override" {
		t.Fatalf("unexpected base url %q", c.Remote.BaseURL)
	}
	if len(c.Kafka.Brokers) != 2 {
		t.Fatalf("unexpected brokers %v", c.Kafka.Brokers)
	}
	if !c.RateLimit.Redis.Enabled || c.RateLimit.Redis.Addr != "redis:6379" {
		t.Fatalf("unexpected redis %+v", c.RateLimit.Redis)
	}
}
