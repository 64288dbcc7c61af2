package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/storage"
	"taskboard-api/stream"
)

// TagService implements tag CRUD. Tags are globally readable; mutation is
// creator-only with no admin override.
type TagService struct {
	store    *storage.Store
	emitter  stream.Emitter
	activity *ActivityLogger
	logger   *log.Logger
}

// NewTagService creates the service.
func NewTagService(store *storage.Store, emitter stream.Emitter, activity *ActivityLogger, logger *log.Logger) *TagService {
	return &TagService{store: store, emitter: emitter, activity: activity, logger: logger}
}

// Create inserts a tag owned by the principal. Names are unique
// case-insensitively among non-deleted tags.
func (s *TagService) Create(ctx context.Context, p domain.Principal, name string) (*domain.TagView, error) {
	if name == "" {
		return nil, domain.Invalid("name", "name is required")
	}
	taken, err := s.store.TagNameTaken(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("tag with this name already exists")
	}
	tag := &domain.Tag{Name: name, CreatedBy: p.UserID}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, p.UserID, domain.ActionCreated, domain.TagEntityRef(tag.ID),
		domain.Details{"name": tag.Name})
	view, err := s.store.TagViewByID(ctx, tag.ID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTagCreated, domain.TagPayload{Tag: *view})
	return view, nil
}

// List returns all non-deleted tags, name ascending.
func (s *TagService) List(ctx context.Context) ([]domain.TagView, error) {
	return s.store.ListTags(ctx)
}

// Get returns one non-deleted tag.
func (s *TagService) Get(ctx context.Context, id uint) (*domain.TagView, error) {
	return s.store.TagViewByID(ctx, id)
}

// Update renames the tag. Only the creator may do this; an admin gets the
// same not-found answer as a stranger.
func (s *TagService) Update(ctx context.Context, p domain.Principal, id uint, name string) (*domain.TagView, error) {
	tag, err := s.store.TagRowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanMutateTag(p, *tag) {
		return nil, domain.ErrNotFound
	}
	if name == "" {
		return nil, domain.Invalid("name", "name cannot be empty")
	}
	taken, err := s.store.TagNameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("another tag with this name already exists")
	}
	rows, err := s.store.UpdateTag(ctx, id, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	s.activity.Record(ctx, p.UserID, domain.ActionUpdated, domain.TagEntityRef(id), domain.Details{
		"old": map[string]any{"name": tag.Name},
		"new": map[string]any{"name": name},
	})
	view, err := s.store.TagViewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTagUpdated, domain.TagPayload{Tag: *view})
	return view, nil
}

// Delete soft-deletes the tag. Task links stay behind; reads filter them.
func (s *TagService) Delete(ctx context.Context, p domain.Principal, id uint) error {
	tag, err := s.store.TagRowByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutateTag(p, *tag) {
		return domain.ErrNotFound
	}
	rows, err := s.store.SoftDeleteTag(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	s.activity.Record(ctx, p.UserID, domain.ActionSoftDeleted, domain.TagEntityRef(id),
		domain.Details{"name": tag.Name})
	s.emit(ctx, domain.EventTagDeleted, domain.DeletedPayload{ID: id})
	return nil
}

func (s *TagService) emit(ctx context.Context, name string, payload any) {
	ev, err := domain.NewEvent(name, payload)
	if err != nil {
		s.logger.Errorf("encode %s event: %v", name, err)
		return
	}
	s.emitter.Emit(ctx, ev)
}
