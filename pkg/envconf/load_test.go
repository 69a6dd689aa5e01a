package envconf

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

var errNoDelay = errors.New("delay must be positive")

type kitchenConf struct {
	Delay time.Duration `env:"ENVCONF_TEST_DELAY" default:"2s"`
	Label string        `env:"ENVCONF_TEST_LABEL" default:""`
}

func (c kitchenConf) Validate() error {
	if c.Delay <= 0 {
		return errNoDelay
	}

	return nil
}

type serviceConf struct {
	Port     uint16     `env:"ENVCONF_TEST_PORT" default:"8080"`
	Level    slog.Level `env:"ENVCONF_TEST_LEVEL" default:"INFO"`
	Offline  bool       `env:"ENVCONF_TEST_OFFLINE" default:"false"`
	Ratio    float64    `env:"ENVCONF_TEST_RATIO" default:"0.5"`
	Retries  *int       `env:"ENVCONF_TEST_RETRIES" default:"3"`
	Kitchen  kitchenConf
	Fallback *kitchenConf
	Skipped  int `env:"-"`
}

type requiredConf struct {
	DSN string `env:"ENVCONF_TEST_DSN"`
}

type rootCheckConf struct {
	Driver string `env:"ENVCONF_TEST_DRIVER" default:"memory"`
}

func (c *rootCheckConf) Validate() error {
	if c.Driver != "memory" {
		return errors.New("unknown driver " + c.Driver)
	}

	return nil
}

//nolint:paralleltest
func TestLoad_Defaults(t *testing.T) {
	cfg := new(serviceConf)

	err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != 8080 || cfg.Level != slog.LevelInfo || cfg.Offline || cfg.Ratio != 0.5 {
		t.Fatalf("unexpected top-level defaults: %+v", cfg)
	}

	if cfg.Retries == nil || *cfg.Retries != 3 {
		t.Fatalf("retries: want pointer to 3, got %v", cfg.Retries)
	}

	if cfg.Kitchen.Delay != 2*time.Second || cfg.Kitchen.Label != "" {
		t.Fatalf("kitchen: unexpected %+v", cfg.Kitchen)
	}

	if cfg.Fallback == nil || cfg.Fallback.Delay != 2*time.Second {
		t.Fatalf("fallback: expected allocated struct with defaults, got %+v", cfg.Fallback)
	}
}

//nolint:paralleltest
func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("ENVCONF_TEST_PORT", "9090")
	t.Setenv("ENVCONF_TEST_LEVEL", "DEBUG")
	t.Setenv("ENVCONF_TEST_OFFLINE", "true")
	t.Setenv("ENVCONF_TEST_RETRIES", "5")
	t.Setenv("ENVCONF_TEST_DELAY", "250ms")
	t.Setenv("ENVCONF_TEST_LABEL", "canteen")

	cfg := &serviceConf{Skipped: 7}

	err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != 9090 || cfg.Level != slog.LevelDebug || !cfg.Offline || *cfg.Retries != 5 {
		t.Fatalf("unexpected top-level values: %+v", cfg)
	}

	if cfg.Kitchen.Delay != 250*time.Millisecond || cfg.Kitchen.Label != "canteen" {
		t.Fatalf("unexpected kitchen values: %+v", cfg.Kitchen)
	}

	if cfg.Skipped != 7 {
		t.Fatalf("field tagged env:\"-\" should be untouched, got %d", cfg.Skipped)
	}
}

//nolint:paralleltest
func TestLoad_MissingRequired(t *testing.T) {
	err := Load(new(requiredConf))
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("want ErrMissingRequired, got %v", err)
	}

	if !strings.Contains(err.Error(), "ENVCONF_TEST_DSN (DSN)") {
		t.Fatalf("error should name variable and field, got %q", err.Error())
	}
}

//nolint:paralleltest
func TestLoad_ParseErrorsNameFieldPath(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
		want string
	}{
		{name: "port", env: "ENVCONF_TEST_PORT", val: "eighty", want: `Port from ENVCONF_TEST_PORT="eighty"`},
		{name: "port_overflow", env: "ENVCONF_TEST_PORT", val: "70000", want: "parse uint"},
		{name: "level", env: "ENVCONF_TEST_LEVEL", val: "LOUD", want: "unmarshal text"},
		{name: "nested_duration", env: "ENVCONF_TEST_DELAY", val: "soon", want: `Kitchen.Delay from ENVCONF_TEST_DELAY="soon"`},
		{name: "pointer", env: "ENVCONF_TEST_RETRIES", val: "many", want: "Retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)

			err := Load(new(serviceConf))
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.env, tt.val)
			}

			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

//nolint:paralleltest
func TestLoad_ValidatesNestedStructs(t *testing.T) {
	t.Setenv("ENVCONF_TEST_DELAY", "0s")

	err := Load(new(serviceConf))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, errNoDelay) {
		t.Fatalf("want ErrInvalidConfig wrapping errNoDelay, got %v", err)
	}

	if !strings.Contains(err.Error(), "Kitchen:") {
		t.Fatalf("error should name the failing struct, got %q", err.Error())
	}
}

//nolint:paralleltest
func TestLoad_ValidatesRootWithPointerReceiver(t *testing.T) {
	t.Setenv("ENVCONF_TEST_DRIVER", "sqlite")

	err := Load(new(rootCheckConf))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}

	if !strings.Contains(err.Error(), "unknown driver sqlite") {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

func TestLoad_RejectsBadDestination(t *testing.T) {
	t.Parallel()

	n := 1

	for _, dst := range []any{nil, serviceConf{}, (*serviceConf)(nil), &n} {
		err := Load(dst)
		if !errors.Is(err, ErrInvalidDestination) {
			t.Fatalf("Load(%T): want ErrInvalidDestination, got %v", dst, err)
		}
	}
}

//nolint:paralleltest
func TestLoad_UnsupportedType(t *testing.T) {
	type sliceConf struct {
		Hosts []string `env:"ENVCONF_TEST_HOSTS" default:"a,b"`
	}

	err := Load(new(sliceConf))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("want ErrUnsupportedType, got %v", err)
	}
}
