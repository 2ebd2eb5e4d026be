package server

import (
	"context"
	"errors"
	"testing"

	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

func TestCacheKeyChangesWithContentFingerprint(t *testing.T) {
	opts := model.DefaultScanOptions()
	fpA := utils.Fingerprint([]byte("<html><body>version one</body></html>"))
	fpB := utils.Fingerprint([]byte("<html><body>version two</body></html>"))

	keyA := cacheKey("http://example.test/", &opts, fpA)
	keyB := cacheKey("http://example.test/", &opts, fpB)
	if keyA == keyB {
		t.Fatal("same URL and options with different content must produce different keys")
	}

	if again := cacheKey("http://example.test/", &opts, fpA); again != keyA {
		t.Fatalf("key not deterministic: %q vs %q", again, keyA)
	}
}

func TestCacheKeySeparatesOptionsAndURLs(t *testing.T) {
	opts := model.DefaultScanOptions()
	fp := utils.Fingerprint([]byte("<html></html>"))

	base := cacheKey("http://example.test/", &opts, fp)
	if other := cacheKey("http://example.test/other", &opts, fp); other == base {
		t.Fatal("different URLs share a key")
	}

	tweaked := opts
	tweaked.MaxIssues = 5
	if other := cacheKey("http://example.test/", &tweaked, fp); other == base {
		t.Fatal("different options share a key")
	}
}

func TestNilCacheScansEveryTime(t *testing.T) {
	var c *resultCache
	calls := 0
	for i := 0; i < 2; i++ {
		result, cached, err := c.GetOrScan(context.Background(), "key", func() (*model.ScanResult, error) {
			calls++
			return &model.ScanResult{Grade: "A"}, nil
		})
		if err != nil {
			t.Fatalf("GetOrScan: %v", err)
		}
		if cached {
			t.Fatal("nil cache reported a hit")
		}
		if result.Grade != "A" {
			t.Fatalf("unexpected result grade %q", result.Grade)
		}
	}
	if calls != 2 {
		t.Fatalf("expected a scan per call, got %d", calls)
	}

	if _, _, err := c.GetOrScan(context.Background(), "key", func() (*model.ScanResult, error) {
		return nil, errors.New("boom")
	}); err == nil {
		t.Fatal("scan error swallowed by nil cache")
	}
}
