// Package covers computes BlurHash placeholders for book cover URLs in the background.
package covers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"sync"
	"syscall"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/media/images"
	"github.com/bookbuddy/bookbuddy-server/internal/metrics"
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	// downloadTimeout is the maximum time for a cover download.
	downloadTimeout = 30 * time.Second

	defaultQueueSize = 256
)

// ErrQueueFull is returned when a job can't be queued without blocking.
var ErrQueueFull = errors.New("cover queue full")

// ErrStopped is returned when a job is queued after Stop.
var ErrStopped = errors.New("cover worker stopped")

// ErrForbiddenAddress is returned when a cover URL resolves to a loopback,
// private or link-local address.
var ErrForbiddenAddress = errors.New("cover address not allowed")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// HashStore persists the computed placeholder for a book.
type HashStore interface {
	SetBookCoverBlurHash(ctx context.Context, bookID, hash string) error
}

// Fetcher downloads a cover and computes its BlurHash.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher with the default download timeout. Cover URLs
// come from users, so connections to internal addresses are refused.
func NewFetcher() *Fetcher {
	return newFetcher(publicAddressesOnly)
}

// newFetcher builds a fetcher whose dialer runs control on every resolved
// address, redirects included. A nil control allows any address.
func newFetcher(control func(network, address string, c syscall.RawConn) error) *Fetcher {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   control,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &Fetcher{httpClient: &http.Client{
		Timeout:   downloadTimeout,
		Transport: transport,
	}}
}

func publicAddressesOnly(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, address)
	}
	if !isPublicAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, ap.Addr())
	}
	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

// BlurHash downloads rawURL and returns the BlurHash of the image.
func (f *Fetcher) BlurHash(ctx context.Context, rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty cover URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse cover URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported cover URL scheme %q", u.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "BookBuddy/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	// Read one byte past the limit so oversized covers are rejected rather than truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return "", fmt.Errorf("read data: %w", err)
	}
	if len(data) > maxCoverSize {
		return "", fmt.Errorf("cover exceeds %d bytes", maxCoverSize)
	}

	return images.ComputeBlurHash(bytes.NewReader(data))
}

type job struct {
	bookID string
	url    string
}

// Worker computes placeholders for queued covers one at a time.
// Failures are logged and counted, never returned to the caller that queued them.
type Worker struct {
	fetcher *Fetcher
	store   HashStore
	logger  *slog.Logger

	jobs     chan job
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool
}

// NewWorker creates a worker. Call Start to begin processing.
func NewWorker(fetcher *Fetcher, store HashStore, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		jobs:    make(chan job, defaultQueueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the processing goroutine. Calling it twice is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.startMu.Lock()
	defer w.startMu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.run(ctx)
}

// Enqueue schedules a placeholder computation without blocking.
func (w *Worker) Enqueue(bookID, coverURL string) error {
	if coverURL == "" {
		return nil
	}
	select {
	case <-w.stop:
		return ErrStopped
	default:
	}
	select {
	case w.jobs <- job{bookID: bookID, url: coverURL}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop stops the worker and waits for the in-flight job to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})

	w.startMu.Lock()
	started := w.started
	w.startMu.Unlock()
	if started {
		<-w.done
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case j := <-w.jobs:
			w.process(ctx, j)
		}
	}
}

func (w *Worker) process(ctx context.Context, j job) {
	hash, err := w.fetcher.BlurHash(ctx, j.url)
	if err == nil {
		err = w.store.SetBookCoverBlurHash(ctx, j.bookID, hash)
	}
	metrics.RecordCoverPlaceholder(err)

	if err != nil {
		w.logger.Warn("cover placeholder failed",
			"book_id", j.bookID,
			"url", j.url,
			"error", err,
		)
		return
	}
	w.logger.Debug("cover placeholder stored", "book_id", j.bookID, "blurhash", hash)
}
