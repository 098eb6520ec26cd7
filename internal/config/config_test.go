package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "INVENTORY_URL", "INVENTORY_TIMEOUT", "STORAGE_DRIVER", "SESSION_TTL", "SESSION_IDLE_TIMEOUT", "SESSION_RATE_PER_MIN"} {
		t.Setenv(k, "")
	}

	c := Load("8090")
	if c.Port != "8090" {
		t.Fatalf("port=%q", c.Port)
	}
	if c.StorageDriver != DriverMemory {
		t.Fatalf("driver=%q", c.StorageDriver)
	}
	if c.InventoryTimeout != 3*time.Second {
		t.Fatalf("timeout=%s", c.InventoryTimeout)
	}
	if c.SessionRatePerMin != 10 {
		t.Fatalf("rate=%d", c.SessionRatePerMin)
	}
	if c.SessionIdle != 30*time.Minute {
		t.Fatalf("idle=%s", c.SessionIdle)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("INVENTORY_TIMEOUT", "750ms")
	t.Setenv("SESSION_RATE_PER_MIN", "nope")

	c := Load("8090")
	if c.Port != "9999" || c.StorageDriver != DriverRedis {
		t.Fatalf("config=%+v", c)
	}
	if c.InventoryTimeout != 750*time.Millisecond {
		t.Fatalf("timeout=%s", c.InventoryTimeout)
	}
	if c.SessionRatePerMin != 10 {
		t.Fatalf("bad int should fall back, got %d", c.SessionRatePerMin)
	}
}

func TestValidateStorefront(t *testing.T) {
	secret := strings.Repeat("s", 32)

	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "weak secret", cfg: Config{SessionSecret: "short", StorageDriver: DriverMemory}, want: ErrWeakSecret},
		{name: "memory", cfg: Config{SessionSecret: secret, StorageDriver: DriverMemory}},
		{name: "redis without addr", cfg: Config{SessionSecret: secret, StorageDriver: DriverRedis}, want: ErrMissingSetting},
		{name: "postgres", cfg: Config{SessionSecret: secret, StorageDriver: DriverPostgres, DatabaseURL: "postgres://x"}},
		{name: "unknown", cfg: Config{SessionSecret: secret, StorageDriver: "etcd"}, want: ErrUnknownDriver},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.ValidateStorefront()
			if tc.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
		})
	}
}
