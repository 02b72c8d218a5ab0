package api

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"paramforge/internal/box"
	"paramforge/internal/codec"
)

// Record is a stored instance. Box is owned by the storage; callers get
// clones.
type Record struct {
	ID        string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Box       *box.Box
}

func (r *Record) clone() *Record {
	out := *r
	out.Box = r.Box.Clone()
	return &out
}

// Persister mirrors instance writes into durable storage. It runs under the
// storage write lock; a failed write leaves memory untouched.
type Persister interface {
	Save(ctx context.Context, id string, version int64, updatedAt time.Time, b *box.Box) error
	Delete(ctx context.Context, classID uint16, id string) error
}

type Storage struct {
	mu       sync.RWMutex
	Dispatch *box.Dispatch
	Data     map[string]*Record // id -> record
	persist  Persister
	log      *slog.Logger
	entropy  io.Reader
}

// NewStorage returns an empty in-memory store. p may be nil.
func NewStorage(d *box.Dispatch, p Persister, log *slog.Logger) *Storage {
	if log == nil {
		log = slog.Default()
	}
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Storage{
		Dispatch: d,
		Data:     make(map[string]*Record),
		persist:  p,
		log:      log,
		entropy:  ulid.Monotonic(src, 0),
	}
}

// newID must be called with the write lock held.
func (s *Storage) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// Put installs a record loaded from durable storage.
func (s *Storage) Put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data[rec.ID] = rec
}

func (s *Storage) Create(ctx context.Context, b *box.Box) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := renderable(b); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec := &Record{ID: s.newID(), Version: 1, CreatedAt: now, UpdatedAt: now, Box: b}
	if s.persist != nil {
		if err := s.persist.Save(ctx, rec.ID, rec.Version, rec.UpdatedAt, b); err != nil {
			return nil, err
		}
	}
	s.Data[rec.ID] = rec
	s.log.Debug("instance created", "id", rec.ID, "class", b.Class().Name())
	return rec.clone(), nil
}

// renderable rejects a box that would commit but fail to encode later.
func renderable(b *box.Box) error {
	if _, err := codec.Encode(b); err != nil {
		return err
	}
	_, err := codec.MarshalJSON(b)
	return err
}

func (s *Storage) Get(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.Data[id]
	if rec == nil {
		return nil, errNotFound
	}
	return rec.clone(), nil
}

// Update applies fn to a copy of the instance and commits it with the next
// version. expect > 0 requires the stored version to match.
func (s *Storage) Update(ctx context.Context, id string, expect int64, fn func(*box.Box) error) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.Data[id]
	if rec == nil {
		return nil, errNotFound
	}
	if expect > 0 && expect != rec.Version {
		return nil, versionConflict(expect, rec.Version)
	}
	next := rec.Box.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := renderable(next); err != nil {
		return nil, err
	}
	updated := &Record{
		ID:        rec.ID,
		Version:   rec.Version + 1,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Box:       next,
	}
	if s.persist != nil {
		if err := s.persist.Save(ctx, updated.ID, updated.Version, updated.UpdatedAt, next); err != nil {
			return nil, err
		}
	}
	s.Data[id] = updated
	return updated.clone(), nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.Data[id]
	if rec == nil {
		return errNotFound
	}
	if s.persist != nil {
		if err := s.persist.Delete(ctx, rec.Box.ClassID(), id); err != nil {
			return err
		}
	}
	delete(s.Data, id)
	s.log.Debug("instance deleted", "id", id)
	return nil
}

// List returns the page of instances selected by lp and the total match
// count. ULIDs sort in creation order.
func (s *Storage) List(lp ListParams) ([]*Record, int) {
	s.mu.RLock()
	all := make([]*Record, 0, len(s.Data))
	for _, r := range s.Data {
		if lp.Class == "" || r.Box.Class().Name() == lp.Class {
			all = append(all, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if lp.Desc {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}

	start := min(lp.Offset, len(all))
	end := min(start+lp.Limit, len(all))
	return all[start:end], len(all)
}
