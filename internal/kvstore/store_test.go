package kvstore_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/kvstore"
)

var (
	_ cart.Storage = (*kvstore.MemStore)(nil)
	_ cart.Storage = (*kvstore.FileStore)(nil)
	_ cart.Storage = (*kvstore.RedisStore)(nil)
	_ cart.Storage = (*kvstore.PostgresStore)(nil)
)

func exerciseStore(t *testing.T, s kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if _, found, err := s.Read(ctx, cart.StorageKey); err != nil || found {
		t.Fatalf("read missing: found=%v err=%v", found, err)
	}

	if err := s.Write(ctx, cart.StorageKey, `[{"id":1,"amount":1}]`); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(ctx, cart.StorageKey, `[]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, found, err := s.Read(ctx, cart.StorageKey)
	if err != nil || !found {
		t.Fatalf("read: found=%v err=%v", found, err)
	}
	if v != `[]` {
		t.Fatalf("value=%q want []", v)
	}
}

func TestMemStore(t *testing.T) {
	exerciseStore(t, kvstore.NewMemStore())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()

	s, err := kvstore.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	exerciseStore(t, s)

	if err := s.Write(context.Background(), "", "x"); err != kvstore.ErrInvalidKey {
		t.Fatalf("empty key: err=%v want %v", err, kvstore.ErrInvalidKey)
	}

	again, err := kvstore.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	v, found, err := again.Read(context.Background(), cart.StorageKey)
	if err != nil || !found || v != `[]` {
		t.Fatalf("reopened read: v=%q found=%v err=%v", v, found, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d want 1 (temp files left behind?)", len(entries))
	}
}

func TestNamespace(t *testing.T) {
	base := kvstore.NewMemStore()
	a := kvstore.Namespace(base, "session-a")
	b := kvstore.Namespace(base, "session-b/")

	exerciseStore(t, a)

	if _, found, _ := b.Read(context.Background(), cart.StorageKey); found {
		t.Fatalf("namespaces share keys")
	}
	if _, found, _ := base.Read(context.Background(), "session-a/"+cart.StorageKey); !found {
		t.Fatalf("prefixed key not in base store")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	s := kvstore.NewRedisStore(addr, zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })

	if err := s.WaitReady(context.Background()); err != nil {
		t.Fatalf("wait ready: %v", err)
	}
	exerciseStore(t, kvstore.Namespace(s, "test-"+uuid.NewString()))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := kvstore.NewPostgresStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	exerciseStore(t, kvstore.Namespace(s, "test-"+uuid.NewString()))
}
