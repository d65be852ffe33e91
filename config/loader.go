// Package config fetches configuration documents and merges them, following
// sub-manifest references recursively, into batches of application entries.
package config

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"launchtray/model"
)

const tracerName = "launchtray/config"

// Batch is the contribution of one resolved document. Batches arrive in
// fetch completion order, not declaration order.
type Batch struct {
	Ref     string
	Parent  string
	Depth   int
	Entries []model.AppEntry
	// Style is set on the root batch only, and only when the root document
	// declared one.
	Style *model.StyleConfig
}

// IsRoot reports whether the batch came from the root document.
func (b Batch) IsRoot() bool {
	return b.Depth == 0
}

// Options configures a Loader.
type Options struct {
	// Fetcher retrieves documents. Defaults to a SchemeFetcher over
	// http.DefaultClient.
	Fetcher Fetcher
	Logger  *slog.Logger
	// OnError receives every branch failure. When nil, failures are logged
	// at error level.
	OnError func(*LoadError)
	// MaxDepth bounds sub-manifest nesting when positive. Zero means no
	// bound: a reference cycle then fetches forever.
	MaxDepth int
	// DedupeRefs skips references that were already fetched in this load.
	DedupeRefs bool
}

// Loader resolves a root document and every document it references.
type Loader struct {
	fetcher  Fetcher
	logger   *slog.Logger
	onError  func(*LoadError)
	maxDepth int
	dedupe   bool
	tracer   trace.Tracer
}

// New creates a Loader from opts.
func New(opts Options) *Loader {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewSchemeFetcher(http.DefaultClient)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher:  fetcher,
		logger:   logger,
		onError:  opts.OnError,
		maxDepth: opts.MaxDepth,
		dedupe:   opts.DedupeRefs,
		tracer:   otel.Tracer(tracerName),
	}
}

// Load starts resolving rootRef and returns the stream of batches. Every
// referenced document is fetched on its own goroutine; the channel is
// closed once all branches have delivered or failed. A branch whose fetch
// never returns keeps the channel open until ctx is cancelled.
func (l *Loader) Load(ctx context.Context, rootRef string) <-chan Batch {
	run := &loadRun{
		loader: l,
		out:    make(chan Batch),
		seen:   make(map[string]struct{}),
	}

	run.wg.Add(1)
	go run.resolve(ctx, rootRef, "", 0)

	go func() {
		run.wg.Wait()
		close(run.out)
	}()
	return run.out
}

// loadRun holds the state of a single Load call.
type loadRun struct {
	loader       *Loader
	out          chan Batch
	wg           sync.WaitGroup
	styleApplied atomic.Bool

	mu   sync.Mutex
	seen map[string]struct{}
}

func (r *loadRun) resolve(ctx context.Context, ref, parent string, depth int) {
	defer r.wg.Done()
	l := r.loader
	logger := l.logger.With("ref", ref, "depth", depth)

	if l.maxDepth > 0 && depth > l.maxDepth {
		r.fail(&LoadError{Ref: ref, Depth: depth, Kind: ErrDepthExceeded})
		return
	}
	if l.dedupe && !r.markSeen(ref) {
		r.fail(&LoadError{Ref: ref, Depth: depth, Kind: ErrAlreadyLoaded})
		return
	}

	doc, err := r.fetchDocument(ctx, ref, depth)
	if err != nil {
		r.fail(err)
		return
	}

	batch := Batch{
		Ref:     ref,
		Parent:  parent,
		Depth:   depth,
		Entries: doc.Entries,
	}
	if doc.Style != nil {
		if depth == 0 && r.styleApplied.CompareAndSwap(false, true) {
			batch.Style = doc.Style
		} else {
			logger.Debug("Ignoring style declared outside the root document")
		}
	}

	logger.Debug("Document resolved", "entries", len(doc.Entries), "sub_manifests", len(doc.SubManifestRefs))
	select {
	case r.out <- batch:
	case <-ctx.Done():
		logger.Debug("Load cancelled before batch delivery")
		return
	}

	if ctx.Err() != nil {
		return
	}
	for _, sub := range doc.SubManifestRefs {
		r.wg.Add(1)
		go r.resolve(ctx, ResolveRef(ref, sub), ref, depth+1)
	}
}

func (r *loadRun) fetchDocument(ctx context.Context, ref string, depth int) (model.ConfigDocument, *LoadError) {
	ctx, span := r.loader.tracer.Start(ctx, "config.fetch", trace.WithAttributes(
		attribute.String("config.ref", ref),
		attribute.Int("config.depth", depth),
	))
	defer span.End()

	res, err := r.loader.fetcher.Fetch(ctx, ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return model.ConfigDocument{}, &LoadError{Ref: ref, Depth: depth, Kind: ErrFetch, Cause: err}
	}

	doc, err := Decode(ref, res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return model.ConfigDocument{}, &LoadError{Ref: ref, Depth: depth, Kind: ErrDecode, Cause: err}
	}
	span.SetAttributes(attribute.Int("config.entries", len(doc.Entries)))
	return doc, nil
}

// markSeen records ref and reports whether it was new.
func (r *loadRun) markSeen(ref string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[ref]; ok {
		return false
	}
	r.seen[ref] = struct{}{}
	return true
}

func (r *loadRun) fail(err *LoadError) {
	if r.loader.onError != nil {
		r.loader.onError(err)
		return
	}
	r.loader.logger.Error("Configuration branch failed", "ref", err.Ref, "depth", err.Depth, "error", err)
}
