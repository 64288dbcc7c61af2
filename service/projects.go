package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/storage"
	"taskboard-api/stream"
)

// ProjectService implements authorization-scoped project CRUD.
type ProjectService struct {
	store    *storage.Store
	emitter  stream.Emitter
	activity *ActivityLogger
	logger   *log.Logger
}

// NewProjectService creates the service.
func NewProjectService(store *storage.Store, emitter stream.Emitter, activity *ActivityLogger, logger *log.Logger) *ProjectService {
	return &ProjectService{store: store, emitter: emitter, activity: activity, logger: logger}
}

// CreateProjectInput carries the create fields.
type CreateProjectInput struct {
	Name        string
	Description *string
}

// UpdateProjectInput carries partial update fields; nil means "keep".
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// Create inserts a project owned by the principal and broadcasts it.
func (s *ProjectService) Create(ctx context.Context, p domain.Principal, in CreateProjectInput) (*domain.ProjectView, error) {
	if in.Name == "" {
		return nil, domain.Invalid("name", "name is required")
	}
	project := &domain.Project{
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   p.UserID,
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, p.UserID, domain.ActionCreated, domain.ProjectRef(project.ID),
		domain.Details{"name": project.Name})
	view, err := s.store.ProjectViewByID(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventProjectCreated, domain.ProjectPayload{Project: *view})
	return view, nil
}

// List returns the projects visible to the principal.
func (s *ProjectService) List(ctx context.Context, p domain.Principal) ([]domain.ProjectView, error) {
	return s.store.VisibleProjects(ctx, p)
}

// Get returns one visible project.
func (s *ProjectService) Get(ctx context.Context, p domain.Principal, id uint) (*domain.ProjectView, error) {
	return s.store.VisibleProjectByID(ctx, p, id)
}

// Update applies the provided fields after re-reading the row and checking
// ownership. Missing and forbidden collapse into the same answer.
func (s *ProjectService) Update(ctx context.Context, p domain.Principal, id uint, in UpdateProjectInput) (*domain.ProjectView, error) {
	project, err := s.store.ProjectRowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanMutateProject(p, *project) {
		return nil, domain.ErrNotFound
	}

	updates := map[string]any{}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.Invalid("name", "name cannot be empty")
		}
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if len(updates) == 0 {
		return nil, domain.Invalid("body", "no fields to update")
	}

	rows, err := s.store.UpdateProject(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	newName := project.Name
	if in.Name != nil {
		newName = *in.Name
	}
	newDesc := project.Description
	if in.Description != nil {
		newDesc = in.Description
	}
	s.activity.Record(ctx, p.UserID, domain.ActionUpdated, domain.ProjectRef(id), domain.Details{
		"old": map[string]any{"name": project.Name, "description": project.Description},
		"new": map[string]any{"name": newName, "description": newDesc},
	})
	view, err := s.store.ProjectViewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventProjectUpdated, domain.ProjectPayload{Project: *view})
	return view, nil
}

// Delete soft-deletes the project and cascades to its tasks atomically.
// The broadcast carries only the id; consumers re-fetch.
func (s *ProjectService) Delete(ctx context.Context, p domain.Principal, id uint) error {
	project, err := s.store.ProjectRowByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutateProject(p, *project) {
		return domain.ErrNotFound
	}
	if err := s.store.SoftDeleteProject(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, p.UserID, domain.ActionSoftDeleted, domain.ProjectRef(id),
		domain.Details{"name": project.Name})
	s.emit(ctx, domain.EventProjectDeleted, domain.DeletedPayload{ID: id})
	return nil
}

func (s *ProjectService) emit(ctx context.Context, name string, payload any) {
	ev, err := domain.NewEvent(name, payload)
	if err != nil {
		s.logger.Errorf("encode %s event: %v", name, err)
		return
	}
	s.emitter.Emit(ctx, ev)
}
