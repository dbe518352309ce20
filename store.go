package settings

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/goliatone/go-settings/pkg/event"
)

// State tracks where the store sits in its lifecycle. Preview mode is
// orthogonal and lives on its own flag.
type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateSaving
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey sets the logical key of the remote row. Defaults to "platform".
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithDraftStore wires the client-local draft slot. Without one, preview
// edits live only in memory for the current session.
func WithDraftStore(draft DraftStore) StoreOption {
	return func(s *Store) {
		s.draft = draft
	}
}

// WithValidator wires the section/document validator. Defaults to
// NoopValidator.
func WithValidator(validator Validator) StoreOption {
	return func(s *Store) {
		if validator != nil {
			s.validator = validator
		}
	}
}

// WithEmitter wires the change broadcast emitter.
func WithEmitter(emitter *event.Emitter) StoreOption {
	return func(s *Store) {
		s.emitter = emitter
	}
}

// WithReporter wires the user-facing status sink.
func WithReporter(reporter Reporter) StoreOption {
	return func(s *Store) {
		if reporter != nil {
			s.reporter = reporter
		}
	}
}

// WithLogger wires a structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store owns the in-memory configuration document and orchestrates loads,
// partial section saves, full publishes, and preview mode. Construct one
// per running session and share the handle; operations serialize
// internally, so concurrent callers queue rather than interleave.
type Store struct {
	// opMu serializes whole operations, including their network round
	// trips. mu guards field access so accessors never block behind I/O.
	opMu sync.Mutex
	mu   sync.RWMutex

	remote    RemoteStore
	draft     DraftStore
	validator Validator
	guard     *Guard
	emitter   *event.Emitter
	reporter  Reporter
	logger    *slog.Logger
	key       string

	state   State
	preview bool
	doc     Document
	version Version
}

// New constructs a Store over the given remote document store.
func New(remote RemoteStore, opts ...StoreOption) *Store {
	s := &Store{
		remote:    remote,
		validator: NoopValidator{},
		reporter:  noopReporter{},
		logger:    slog.Default(),
		key:       "platform",
		doc:       NewDocument(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.guard = NewGuard(remote, s.key)
	return s
}

// Load fetches the remote document and its version token, establishing the
// in-memory baseline. A missing row is a first run and yields an empty
// document. A document that fails validation is logged and used raw so
// stale remote data never blocks the application. When a draft snapshot
// exists it overlays the in-memory document for display, without touching
// the version token: the next persisted save still conflict-checks against
// the true remote baseline.
func (s *Store) Load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	doc, ver, ok, err := s.remote.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("settings: load failed", "key", s.key, "error", err)
		s.reporter.Report(ReportError, "could not load settings, try again later")
		return &TransportError{Op: "load", Err: err}
	}
	if !ok {
		doc = NewDocument()
		ver = Version{}
	} else {
		normalized, verr := s.validator.ValidateDocument(doc)
		if verr != nil {
			s.logger.Warn("settings: remote document failed validation, using raw value",
				"key", s.key, "error", verr)
		} else {
			doc = normalized
		}
	}

	display := doc
	if s.draft != nil {
		draftDoc, found, derr := s.draft.ReadDraft(ctx)
		switch {
		case derr != nil:
			s.logger.Warn("settings: draft read failed, continuing without draft", "error", derr)
		case found:
			display = draftDoc
			if confirmed, has, verr := s.draft.ReadVersion(ctx); verr == nil && has && !confirmed.Equal(ver) {
				s.logger.Info("settings: remote changed since draft was taken",
					"draft_version", confirmed.String(), "remote_version", ver.String())
			}
		}
	}

	s.mu.Lock()
	s.doc = display
	s.version = ver
	s.state = StateLoaded
	s.mu.Unlock()
	return nil
}

// Save validates partial against the section's rules and shallow-merges it
// into the in-memory document. In preview mode the merged document goes to
// the draft slot and nothing touches the network. Otherwise the write is
// conflict-checked and written through; on conflict the store reloads
// itself, notifies, and reports failure. Save never returns an error:
// failures surface through the reporter and the logs.
func (s *Store) Save(ctx context.Context, section string, partial map[string]any) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	state, preview, doc, ver := s.state, s.preview, s.doc, s.version
	s.mu.RUnlock()

	if state == StateUninitialized {
		s.logger.Warn("settings: save before load", "section", section)
		return false
	}

	if err := s.validator.ValidateSection(section, partial); err != nil {
		s.reportValidation(err)
		s.logger.Info("settings: section rejected by validator", "section", section, "error", err)
		return false
	}

	merged := MergeSection(doc, section, partial)

	if preview {
		s.mu.Lock()
		s.doc = merged
		s.mu.Unlock()
		s.writeDraft(ctx, merged)
		return true
	}

	s.setSaving(true)
	defer s.setSaving(false)

	next, err := s.guard.CheckAndAdvance(ctx, ver)
	if errors.Is(err, ErrConflict) {
		s.handleConflict(ctx, section)
		return false
	}
	if err != nil {
		s.logger.Error("settings: conflict check failed", "op", "save", "section", section, "error", err)
		s.reporter.Report(ReportError, "could not save settings, try again later")
		return false
	}

	if err := s.remote.Put(ctx, s.key, merged, next); err != nil {
		s.logger.Error("settings: write failed", "op", "save", "section", section, "error", err)
		s.reporter.Report(ReportError, "could not save settings, try again later")
		return false
	}

	s.mu.Lock()
	s.doc = merged
	s.version = next
	s.mu.Unlock()

	s.confirmVersion(ctx, next)
	s.emit(ctx, "saved", []string{section}, merged, next)
	return true
}

// SaveAll validates the whole in-memory document and publishes it. In
// preview mode it is a no-op success: preview never reaches the remote
// store. A successful publish clears the draft slot, since persisted state
// supersedes it. Unlike Save, SaveAll returns its failures so callers can
// distinguish a failed publish from a routine section edit failure.
func (s *Store) SaveAll(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	state, preview, doc, ver := s.state, s.preview, s.doc, s.version
	s.mu.RUnlock()

	if state == StateUninitialized {
		return ErrNotLoaded
	}

	normalized, err := s.validator.ValidateDocument(doc)
	if err != nil {
		s.reportValidation(err)
		s.logger.Info("settings: document rejected by validator", "error", err)
		return err
	}

	if preview {
		return nil
	}

	s.setSaving(true)
	defer s.setSaving(false)

	next, err := s.guard.CheckAndAdvance(ctx, ver)
	if errors.Is(err, ErrConflict) {
		s.handleConflict(ctx, "")
		return err
	}
	if err != nil {
		s.logger.Error("settings: conflict check failed", "op", "save all", "error", err)
		s.reporter.Report(ReportError, "could not publish settings, try again later")
		return err
	}

	if err := s.remote.Put(ctx, s.key, normalized, next); err != nil {
		s.logger.Error("settings: write failed", "op", "save all", "error", err)
		s.reporter.Report(ReportError, "could not publish settings, try again later")
		return &TransportError{Op: "save all", Err: err}
	}

	s.mu.Lock()
	s.doc = normalized
	s.version = next
	s.mu.Unlock()

	s.clearDraft(ctx)
	s.confirmVersion(ctx, next)
	s.emit(ctx, "published", normalized.Sections(), normalized, next)
	return nil
}

// TogglePreview flips preview mode. Turning preview on snapshots the
// current document into the draft slot; turning it off restores the last
// draft so edits survive toggle cycles until an explicit publish. Toggling
// is rejected while another operation is in flight.
func (s *Store) TogglePreview(ctx context.Context) bool {
	if !s.opMu.TryLock() {
		s.logger.Warn("settings: preview toggle rejected while an operation is in flight")
		return false
	}
	defer s.opMu.Unlock()

	s.mu.RLock()
	preview, doc := s.preview, s.doc
	s.mu.RUnlock()

	if !preview {
		s.writeDraft(ctx, doc)
		s.mu.Lock()
		s.preview = true
		s.mu.Unlock()
		return true
	}

	if s.draft != nil {
		draftDoc, found, err := s.draft.ReadDraft(ctx)
		switch {
		case err != nil:
			s.logger.Warn("settings: draft read failed on preview exit", "error", err)
		case found:
			doc = draftDoc
		}
	}

	s.mu.Lock()
	s.preview = false
	s.doc = doc
	s.mu.Unlock()
	return true
}

// Document returns a deep copy of the current in-memory document.
func (s *Store) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Version returns the last token confirmed against the remote store.
func (s *Store) Version() Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// PreviewMode reports whether preview mode is active.
func (s *Store) PreviewMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview
}

// Saving reports whether a persisted write is in flight.
func (s *Store) Saving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateSaving
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) setSaving(saving bool) {
	s.mu.Lock()
	if saving {
		s.state = StateSaving
	} else {
		s.state = StateLoaded
	}
	s.mu.Unlock()
}

// handleConflict reloads from remote (discarding the caller's in-memory
// change for this call) and notifies. No rebase is attempted: the loser
// reloads, by design.
func (s *Store) handleConflict(ctx context.Context, section string) {
	s.logger.Info("settings: write conflict, reloading", "section", section)
	if err := s.load(ctx); err != nil {
		s.logger.Error("settings: reload after conflict failed", "error", err)
	}
	s.reporter.Report(ReportWarn, "someone else changed these settings, reloading")
}

func (s *Store) reportValidation(err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		for _, field := range verr.Fields {
			s.reporter.Report(ReportError, field.Error())
		}
		return
	}
	s.reporter.Report(ReportError, err.Error())
}

func (s *Store) writeDraft(ctx context.Context, doc Document) {
	if s.draft == nil {
		return
	}
	if err := s.draft.WriteDraft(ctx, doc); err != nil {
		s.logger.Warn("settings: draft write failed, in-memory document remains authoritative", "error", err)
	}
}

func (s *Store) clearDraft(ctx context.Context) {
	if s.draft == nil {
		return
	}
	if err := s.draft.ClearDraft(ctx); err != nil {
		s.logger.Warn("settings: draft clear failed", "error", err)
	}
}

func (s *Store) confirmVersion(ctx context.Context, v Version) {
	if s.draft == nil {
		return
	}
	if err := s.draft.WriteVersion(ctx, v); err != nil {
		s.logger.Warn("settings: confirmed version write failed", "error", err)
	}
}

func (s *Store) emit(ctx context.Context, verb string, sections []string, doc Document, v Version) {
	if !s.emitter.Enabled() {
		return
	}
	err := s.emitter.Emit(ctx, event.Event{
		Verb:     verb,
		Key:      s.key,
		Sections: sections,
		Document: doc.Clone(),
		Version:  v.String(),
	})
	if err != nil {
		s.logger.Warn("settings: change broadcast failed", "verb", verb, "error", err)
	}
}
