package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSE_SERVICE_URL", "http://pose:9090")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Port != "8080" || c.Env != "development" {
		t.Errorf("server defaults: %+v", c)
	}
	if c.LLMProvider != ProviderAnthropic {
		t.Errorf("provider = %q", c.LLMProvider)
	}
	if c.PoseTimeout != 120*time.Second {
		t.Errorf("pose timeout = %v", c.PoseTimeout)
	}
	if c.LLMTemperature != 0.3 || c.LLMMaxTokens != 2000 || c.LLMStream {
		t.Errorf("sampling defaults: temp=%v max=%d stream=%v", c.LLMTemperature, c.LLMMaxTokens, c.LLMStream)
	}
	if c.BatchConcurrency != 4 {
		t.Errorf("batch concurrency = %d", c.BatchConcurrency)
	}
}

func TestLoad_NvidiaPresets(t *testing.T) {
	t.Setenv("POSE_SERVICE_URL", "http://pose:9090")
	t.Setenv("LLM_PROVIDER", "nvidia")
	t.Setenv("NVIDIA_API_KEY", "nvapi-test")

	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.LLMTemperature != 0.2 || c.LLMTopP != 0.7 || c.LLMMaxTokens != 2048 || !c.LLMStream {
		t.Errorf("nvidia presets: temp=%v top_p=%v max=%d stream=%v",
			c.LLMTemperature, c.LLMTopP, c.LLMMaxTokens, c.LLMStream)
	}
}

func TestLoad_SamplingOverride(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LLM_TEMPERATURE", "0.75")
	t.Setenv("LLM_MAX_TOKENS", "512")

	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.LLMTemperature != 0.75 || c.LLMMaxTokens != 512 {
		t.Errorf("overrides not applied: temp=%v max=%d", c.LLMTemperature, c.LLMMaxTokens)
	}
}

func TestLoad_MissingPoseServiceURL(t *testing.T) {
	t.Setenv("POSE_SERVICE_URL", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "POSE_SERVICE_URL") {
		t.Errorf("got %v, want missing POSE_SERVICE_URL error", err)
	}
}

func TestLoad_ProviderKeyRequired(t *testing.T) {
	t.Setenv("POSE_SERVICE_URL", "http://pose:9090")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-unused")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("got %v, want missing OPENAI_API_KEY error", err)
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("POSE_SERVICE_URL", "http://pose:9090")
	t.Setenv("LLM_PROVIDER", "bard")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "unknown LLM_PROVIDER") {
		t.Errorf("got %v, want unknown provider error", err)
	}
}

func TestLoad_DurationSyntax(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("POSE_TIMEOUT", "90")

	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PoseTimeout != 90*time.Second {
		t.Errorf("pose timeout = %v, want 90s", c.PoseTimeout)
	}
}
