package covers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	mu     sync.Mutex
	hashes map[string]string
	got    chan string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{hashes: map[string]string{}, got: make(chan string, 8)}
}

func (s *recordingStore) SetBookCoverBlurHash(_ context.Context, bookID, hash string) error {
	s.mu.Lock()
	s.hashes[bookID] = hash
	s.mu.Unlock()
	s.got <- bookID
	return nil
}

func pngCover(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 120))
	for y := range 120 {
		for x := range 80 {
			img.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 2), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func coverServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cover.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_BlurHash(t *testing.T) {
	srv := coverServer(t, pngCover(t))
	f := newFetcher(nil)

	hash, err := f.BlurHash(context.Background(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.Len(t, hash, 28)

	_, err = f.BlurHash(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "status 404")

	_, err = f.BlurHash(context.Background(), "")
	assert.Error(t, err)
}

func TestFetcher_RefusesInternalAddresses(t *testing.T) {
	srv := coverServer(t, pngCover(t))
	f := NewFetcher()

	_, err := f.BlurHash(context.Background(), srv.URL+"/cover.png")
	assert.ErrorIs(t, err, ErrForbiddenAddress)

	_, err = f.BlurHash(context.Background(), "http://169.254.169.254/latest/meta-data/")
	assert.ErrorIs(t, err, ErrForbiddenAddress)

	_, err = f.BlurHash(context.Background(), "file:///etc/passwd")
	assert.ErrorContains(t, err, "unsupported cover URL scheme")
}

func TestFetcher_RefusesRedirectToInternalAddress(t *testing.T) {
	internal := coverServer(t, pngCover(t))
	redirect := httptest.NewServer(http.RedirectHandler(internal.URL+"/cover.png", http.StatusFound))
	t.Cleanup(redirect.Close)

	// Let the first hop through so the redirect target is what gets checked.
	first := true
	f := newFetcher(func(network, address string, c syscall.RawConn) error {
		if first {
			first = false
			return nil
		}
		return publicAddressesOnly(network, address, c)
	})

	_, err := f.BlurHash(context.Background(), redirect.URL)
	assert.ErrorIs(t, err, ErrForbiddenAddress)
}

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::ffff:127.0.0.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := isPublicAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
				t.Errorf("isPublicAddr(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestWorker_StoresPlaceholder(t *testing.T) {
	srv := coverServer(t, pngCover(t))
	store := newRecordingStore()

	w := NewWorker(newFetcher(nil), store, nil)
	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, w.Enqueue("book-01", srv.URL+"/cover.png"))

	select {
	case id := <-store.got:
		assert.Equal(t, "book-01", id)
	case <-time.After(5 * time.Second):
		t.Fatal("placeholder was not stored")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotEmpty(t, store.hashes["book-01"])
}

func TestWorker_FailureIsNotStored(t *testing.T) {
	srv := coverServer(t, pngCover(t))
	store := newRecordingStore()

	w := NewWorker(newFetcher(nil), store, nil)
	w.Start(context.Background())

	require.NoError(t, w.Enqueue("book-bad", srv.URL+"/missing.png"))
	require.NoError(t, w.Enqueue("book-ok", srv.URL+"/cover.png"))

	select {
	case id := <-store.got:
		assert.Equal(t, "book-ok", id)
	case <-time.After(5 * time.Second):
		t.Fatal("second job was not processed")
	}
	w.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.hashes, "book-bad")
}

func TestWorker_EnqueueAfterStop(t *testing.T) {
	w := NewWorker(newFetcher(nil), newRecordingStore(), nil)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	assert.ErrorIs(t, w.Enqueue("book-01", "http://example.invalid/c.png"), ErrStopped)
	assert.NoError(t, w.Enqueue("book-01", ""), "empty URLs are ignored")
}

func TestWorker_QueueFull(t *testing.T) {
	w := NewWorker(newFetcher(nil), newRecordingStore(), nil)
	// Not started: nothing drains the queue.
	for range defaultQueueSize {
		require.NoError(t, w.Enqueue("b", "http://example.invalid/c.png"))
	}
	assert.ErrorIs(t, w.Enqueue("b", "http://example.invalid/c.png"), ErrQueueFull)
	w.Stop()
}
