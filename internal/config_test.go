package internal

import (
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/newsledger/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Datasets.Delim() != ',' {
		t.Errorf("delim = %q, want ','", cfg.Datasets.Delim())
	}
	if cfg.Report.Year != 2016 || cfg.Report.Keyword != "politics" {
		t.Errorf("report = %+v", cfg.Report)
	}
}

func TestDatasetsConfig_Delimiter(t *testing.T) {
	for _, d := range []string{"", ",,", `"`} {
		cfg := NewDefaultConfig()
		cfg.Datasets.Delimiter = d
		if err := cfg.Validate(); err == nil {
			t.Errorf("delimiter %q should fail validation", d)
		}
	}
	cfg := NewDefaultConfig()
	cfg.Datasets.Delimiter = ";"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("semicolon delimiter should pass: %v", err)
	}
	if cfg.Datasets.Delim() != ';' {
		t.Errorf("delim = %q", cfg.Datasets.Delim())
	}
}

func TestDatasetsConfig_Files(t *testing.T) {
	cfg := NewDefaultConfig()
	files := cfg.Datasets.Files()
	if len(files) != 3 {
		t.Fatalf("len(files) = %d, want 3", len(files))
	}
	if files["fake"] != "fake.csv" {
		t.Errorf("fake file = %q", files["fake"])
	}
}

func TestDatasetsConfig_MissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Datasets.Combined = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing combined file name should fail")
	}
}

func TestReportConfig_YearRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Report.Year = 16
	if err := cfg.Validate(); err == nil {
		t.Fatal("two-digit report year should fail validation")
	}
}

func TestHTTPConfig_Port(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("port out of range should fail")
	}
	cfg.App.HTTP.Port = 9090
	if got := cfg.App.HTTP.Address(); got != ":9090" {
		t.Errorf("address = %q, want %q", got, ":9090")
	}
}

func TestSampleConfigLoads(t *testing.T) {
	t.Setenv("NEWSLEDGER_TOKEN", "")
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load("../config/config.yaml", cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Datasets.Delim() != ',' {
		t.Errorf("delimiter = %q", cfg.Datasets.Delim())
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Auth.AuthEnabled() {
		t.Error("sample config should not enable auth")
	}
}
