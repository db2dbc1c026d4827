// Package controller implements the directory service: per-session query
// and pagination state, the mutation coordinator, and the shared store,
// all serialized behind one lock.
package controller

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/pagination"
	"github.com/gartstein/directory/internal/directory/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, company models.Company)
}

// Repository defines the storage interface for Company objects.
type Repository interface {
	Add(ctx context.Context, in models.CompanyInput) (models.Company, error)
	Update(ctx context.Context, company models.Company) (bool, error)
	Remove(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (models.Company, bool, error)
	List(ctx context.Context) ([]models.Company, error)
	Replace(ctx context.Context, companies []models.Company) error
}

// Recorder receives service activity for metrics.
type Recorder interface {
	SetCompanies(n int)
	SetSessions(n int)
	Mutation(op string, found bool)
	ObserveView(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) SetCompanies(int)          {}
func (nopRecorder) SetSessions(int)           {}
func (nopRecorder) Mutation(string, bool)     {}
func (nopRecorder) ObserveView(time.Duration) {}

type session struct {
	spec  query.Spec
	page  pagination.State
	coord Coordinator
}

// DirectoryService hosts any number of sessions over one store. Every
// action runs to completion under mu, so a store write and the view
// derived from it are never interleaved with another action.
type DirectoryService struct {
	mu sync.Mutex

	repo     Repository
	producer EventProducer
	recorder Recorder
	logger   *zap.Logger

	pageSize int
	now      func() time.Time

	loaded     bool
	industries []string
	sessions   map[uuid.UUID]*session
}

// Option customizes a DirectoryService.
type Option func(*DirectoryService)

func WithPageSize(n int) Option {
	return func(s *DirectoryService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *DirectoryService) { s.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(s *DirectoryService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewDirectoryService constructs a DirectoryService with a repository,
// an event producer, and a logger. The service reports ErrLoading until
// Load is called.
func NewDirectoryService(repo Repository, producer EventProducer, logger *zap.Logger, opts ...Option) *DirectoryService {
	s := &DirectoryService{
		repo:       repo,
		producer:   producer,
		recorder:   nopRecorder{},
		logger:     logger.Named("directory_service"),
		pageSize:   pagination.DefaultPageSize,
		now:        time.Now,
		industries: []string{},
		sessions:   make(map[uuid.UUID]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load installs the seed snapshot and ends the loading phase.
func (s *DirectoryService) Load(ctx context.Context, companies []models.Company, industries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Replace(ctx, companies); err != nil {
		return fmt.Errorf("failed to install seed: %w", err)
	}
	s.industries = slices.Clone(industries)
	if s.industries == nil {
		s.industries = []string{}
	}
	s.loaded = true

	if all, err := s.repo.List(ctx); err == nil {
		s.recorder.SetCompanies(len(all))
		s.logger.Info("Directory loaded", zap.Int("companies", len(all)), zap.Int("industries", len(s.industries)))
	}
	return nil
}

func (s *DirectoryService) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Industries is the filter vocabulary from the seed document.
func (s *DirectoryService) Industries() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, e.ErrLoading
	}
	return slices.Clone(s.industries), nil
}

// CompanyNames is the sorted set of current company names.
func (s *DirectoryService) CompanyNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, e.ErrLoading
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return query.CompanyNames(all), nil
}

// OpenSession starts a session with the default query on page 1.
// Sessions may be opened while the directory is still loading.
func (s *DirectoryService) OpenSession() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.sessions[id] = &session{spec: query.DefaultSpec(), page: pagination.First()}
	s.recorder.SetSessions(len(s.sessions))
	s.logger.Debug("Session opened", zap.String("session_id", id.String()))
	return id
}

func (s *DirectoryService) CloseSession(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return e.ErrNoSession
	}
	delete(s.sessions, id)
	s.recorder.SetSessions(len(s.sessions))
	return nil
}

// View derives the session's current page without changing anything.
func (s *DirectoryService) View(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.act(ctx, id, func(*session) error { return nil })
}

// SetQuery replaces the session's query. The page resets to 1 only when
// the new query differs from the current one.
func (s *DirectoryService) SetQuery(ctx context.Context, id uuid.UUID, spec query.Spec) (*View, error) {
	spec = spec.Normalize()
	if _, err := models.ParseSortField(string(spec.SortField)); err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	if _, err := models.ParseSortDirection(string(spec.SortDirection)); err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	return s.act(ctx, id, func(sess *session) error {
		if !sess.spec.Equal(spec) {
			sess.spec = spec
			sess.page = pagination.First()
		}
		return nil
	})
}

// ToggleSort applies a column header click and resets the page.
func (s *DirectoryService) ToggleSort(ctx context.Context, id uuid.UUID, field models.SortField) (*View, error) {
	if _, err := models.ParseSortField(string(field)); err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	return s.act(ctx, id, func(sess *session) error {
		sess.spec = sess.spec.ToggleSort(field)
		sess.page = pagination.First()
		return nil
	})
}

// SetPage moves to a 1-based page. Pages past the end are accepted and
// render empty.
func (s *DirectoryService) SetPage(ctx context.Context, id uuid.UUID, page int) (*View, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", e.ErrInvalidInput)
	}
	return s.act(ctx, id, func(sess *session) error {
		sess.page = pagination.State{Page: page}
		return nil
	})
}

// OpenAdd opens a blank form.
func (s *DirectoryService) OpenAdd(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.act(ctx, id, func(sess *session) error {
		sess.coord.OpenAdd(s.now())
		return nil
	})
}

// OpenEdit opens a form holding a copy of company companyID.
func (s *DirectoryService) OpenEdit(ctx context.Context, id uuid.UUID, companyID int64) (*View, error) {
	return s.act(ctx, id, func(sess *session) error {
		_, err := sess.coord.OpenEdit(ctx, s.repo, companyID)
		return err
	})
}

// Submit commits validated input through the open form.
func (s *DirectoryService) Submit(ctx context.Context, id uuid.UUID, in models.CompanyInput) (*View, error) {
	return s.act(ctx, id, func(sess *session) error {
		out, err := sess.coord.Submit(ctx, s.repo, in)
		if err != nil {
			return err
		}
		return s.committed(ctx, out)
	})
}

// Cancel closes the open form, if any.
func (s *DirectoryService) Cancel(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.act(ctx, id, func(sess *session) error {
		sess.coord.Cancel()
		return nil
	})
}

// RequestDelete arms a delete that waits for confirmation.
func (s *DirectoryService) RequestDelete(ctx context.Context, id uuid.UUID, companyID int64) (*View, error) {
	return s.act(ctx, id, func(sess *session) error {
		sess.coord.RequestDelete(companyID)
		return nil
	})
}

func (s *DirectoryService) ConfirmDelete(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.act(ctx, id, func(sess *session) error {
		out, err := sess.coord.ConfirmDelete(ctx, s.repo)
		if err != nil {
			return err
		}
		return s.committed(ctx, out)
	})
}

func (s *DirectoryService) CancelDelete(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.act(ctx, id, func(sess *session) error {
		sess.coord.CancelDelete()
		return nil
	})
}

// DisplayedPage returns the companies currently shown to the session,
// which is what the exports operate on.
func (s *DirectoryService) DisplayedPage(ctx context.Context, id uuid.UUID) ([]models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	w, err := s.derive(ctx, sess)
	if err != nil {
		return nil, err
	}
	return w.Items, nil
}

// act runs fn against the session and derives the resulting view, all
// under the service lock.
func (s *DirectoryService) act(ctx context.Context, id uuid.UUID, fn func(*session) error) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	w, err := s.derive(ctx, sess)
	if err != nil {
		return nil, err
	}
	return newView(id, sess, w), nil
}

func (s *DirectoryService) session(id uuid.UUID) (*session, error) {
	if !s.loaded {
		return nil, e.ErrLoading
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, e.ErrNoSession
	}
	return sess, nil
}

func (s *DirectoryService) derive(ctx context.Context, sess *session) (pagination.Window[models.Company], error) {
	start := time.Now()
	defer func() { s.recorder.ObserveView(time.Since(start)) }()

	all, err := s.repo.List(ctx)
	if err != nil {
		return pagination.Window[models.Company]{}, fmt.Errorf("failed to list companies: %w", err)
	}
	return pagination.Paginate(query.Apply(all, sess.spec), s.pageSize, sess.page.Page), nil
}

// committed records a store call and publishes it when it changed something.
func (s *DirectoryService) committed(ctx context.Context, out Outcome) error {
	s.recorder.Mutation(opName(out.Op), out.Found)
	if !out.Found {
		s.logger.Info("Mutation matched no company",
			zap.String("event_type", string(out.Op)),
			zap.Int64("company_id", out.Company.ID),
		)
		return nil
	}

	s.logger.Info("Mutation committed",
		zap.String("event_type", string(out.Op)),
		zap.Int64("company_id", out.Company.ID),
	)
	s.producer.Produce(out.Op, out.Company)

	all, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}
	s.recorder.SetCompanies(len(all))
	return nil
}

func opName(t events.EventType) string {
	switch t {
	case events.CompanyCreated:
		return "add"
	case events.CompanyUpdated:
		return "update"
	case events.CompanyDeleted:
		return "remove"
	default:
		return string(t)
	}
}
