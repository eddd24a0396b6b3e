package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/courseforge/courseforge/internal/domain"
)

func TestUpsertAndLookup(t *testing.T) {
	r := New()

	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("expected miss on empty registry")
	}

	cfg := domain.DatabaseConfig{DBName: "acme", DBHost: "h", DBPort: 5432}
	r.Upsert("t1", cfg)

	got, ok := r.Lookup("t1")
	if !ok || got != cfg {
		t.Fatalf("expected %+v, got %+v (ok=%v)", cfg, got, ok)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
}

func TestUpsertOverwrites(t *testing.T) {
	r := New()
	r.Upsert("t1", domain.DatabaseConfig{DBName: "old"})
	r.Upsert("t1", domain.DatabaseConfig{DBName: "new"})

	got, _ := r.Lookup("t1")
	if got.DBName != "new" {
		t.Fatalf("expected overwrite, got %q", got.DBName)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Upsert(fmt.Sprintf("t%d", i), domain.DatabaseConfig{DBName: "db"})
		}(i)
		go func(i int) {
			defer wg.Done()
			r.Lookup(fmt.Sprintf("t%d", i))
		}(i)
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", r.Len())
	}
}
