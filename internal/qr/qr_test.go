package qr

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/vincent-petithory/dataurl"
)

func TestCacheEmpty(t *testing.T) {
	c := NewCache()

	if _, ok := c.Read(); ok {
		t.Fatal("new cache should be empty")
	}
	if c.Produced() {
		t.Fatal("nothing produced yet")
	}
}

func TestCacheLastWriteWins(t *testing.T) {
	c := NewCache()
	c.Bind("a")

	for _, p := range []string{"one", "two", "three"} {
		if !c.Record("a", p) {
			t.Fatalf("record %q rejected", p)
		}
	}

	got, ok := c.Read()
	if !ok || got != "three" {
		t.Fatalf("got %q, %v; want three", got, ok)
	}
	if !c.Produced() {
		t.Error("produced flag not set")
	}
}

func TestCacheRejectsStaleOwner(t *testing.T) {
	c := NewCache()
	c.Bind("old")
	c.Record("old", "stale")

	c.Bind("new")
	if _, ok := c.Read(); ok {
		t.Fatal("bind should drop the previous payload")
	}
	if c.Record("old", "late") {
		t.Fatal("record from a previous owner should be rejected")
	}
	if c.Record("", "anon") {
		t.Fatal("record without owner should be rejected")
	}
	if _, ok := c.Read(); ok {
		t.Fatal("stale payload served")
	}
}

func TestCacheClearKeepsProduced(t *testing.T) {
	c := NewCache()
	c.Bind("a")
	c.Record("a", "p")
	c.Clear()

	if _, ok := c.Read(); ok {
		t.Fatal("payload should be gone")
	}
	if !c.Produced() {
		t.Fatal("produced flag should survive clear")
	}
	if !c.Record("a", "again") {
		t.Fatal("owner should still be bound after clear")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()
	c.Bind("a")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Record("a", "payload")
		}()
		go func() {
			defer wg.Done()
			c.Read()
		}()
	}
	wg.Wait()

	if got, _ := c.Read(); got != "payload" {
		t.Fatalf("got %q", got)
	}
}

func TestPNGRenderer(t *testing.T) {
	var term bytes.Buffer
	r := PNGRenderer{Size: 128, Terminal: &term}

	out, err := r.Render("2@Zm9vYmFy,abc,def")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.40s", out)
	}

	decoded, err := dataurl.DecodeString(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.HasPrefix(decoded.Data, []byte("\x89PNG")) {
		t.Error("payload is not a PNG")
	}
	if term.Len() == 0 {
		t.Error("terminal rendering missing")
	}
}

func TestRenderFunc(t *testing.T) {
	r := RenderFunc(func(code string) (string, error) { return "img:" + code, nil })

	if got, _ := r.Render("x"); got != "img:x" {
		t.Errorf("got %q", got)
	}
}
