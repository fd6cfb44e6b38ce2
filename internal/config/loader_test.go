package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pable/aflcorr/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinGames, convey.ShouldEqual, 12)
				convey.So(cfg.Method, convey.ShouldEqual, "pearson")
				convey.So(cfg.DropConstant, convey.ShouldBeTrue)
				convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.Precision, convey.ShouldEqual, 3)
				convey.So(len(cfg.Teams), convey.ShouldEqual, 18)
				convey.So(cfg.MCPPath, convey.ShouldEqual, "/mcp")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("AFLCORR_MIN_GAMES", "10")
			t.Setenv("AFLCORR_METHOD", "kendall")
			t.Setenv("AFLCORR_DATA_DIR", "/srv/afl")
			t.Setenv("AFLCORR_TEAMS", "Geelong, Carlton")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinGames, convey.ShouldEqual, 10)
				convey.So(cfg.Method, convey.ShouldEqual, "kendall")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/srv/afl")
				convey.So(cfg.Teams, convey.ShouldResemble, []string{"Geelong", "Carlton"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfig(t, `
min_games: 8
method: spearman
precision: 2
teams:
  - Geelong
`)
			cfg, err := config.Load(ctx, path)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinGames, convey.ShouldEqual, 8)
				convey.So(cfg.Method, convey.ShouldEqual, "spearman")
				convey.So(cfg.Precision, convey.ShouldEqual, 2)
				convey.So(cfg.Teams, convey.ShouldResemble, []string{"Geelong"})
			})

			convey.Convey("Then env vars take precedence over the file", func() {
				t.Setenv("AFLCORR_MIN_GAMES", "5")
				cfg, err := config.Load(ctx, path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinGames, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the file path comes from AFLCORR_CONFIG", func() {
			t.Setenv("AFLCORR_CONFIG", writeConfig(t, "results_dir: out\n"))
			cfg, err := config.Load(ctx, "")
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.ResultsDir, convey.ShouldEqual, "out")
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a value is invalid", func() {
			t.Setenv("AFLCORR_METHOD", "tau")
			_, err := config.Load(ctx, "")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*config.Config)
	}{
		{"zero min games", func(c *config.Config) { c.MinGames = 0 }},
		{"zero workers", func(c *config.Config) { c.Workers = 0 }},
		{"precision too high", func(c *config.Config) { c.Precision = 7 }},
		{"negative rounds", func(c *config.Config) { c.Rounds = -1 }},
		{"unknown method", func(c *config.Config) { c.Method = "cosine" }},
	}
	for _, tc := range cases {
		cfg := config.New()
		tc.mut(cfg)
		if err := cfg.Validate(); !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
	}
	if err := config.New().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aflcorr.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"AFLCORR_CONFIG", "AFLCORR_MIN_GAMES", "AFLCORR_METHOD", "AFLCORR_DATA_DIR",
		"AFLCORR_TEAMS", "AFLCORR_RESULTS_DIR",
	} {
		_ = os.Unsetenv(k)
	}
}
