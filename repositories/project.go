//go:generate go run go.uber.org/mock/mockgen -source=project.go -destination=../mocks/mock_project_repository.go -package=mocks
package repositories

import (
	"chat-desk/domain"
	"chat-desk/errors"
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	projectPrefix     = "project:"
	projectUIDIndex   = "idx:project:uid:"
	projectOwnerIndex = "idx:project:owner:"
)

type IProjectRepository interface {
	CreateProject(ctx context.Context, ownerID, name, uniqueID string) (domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	GetProjectByUniqueID(ctx context.Context, uniqueID string) (domain.Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error)
}

type ProjectRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewProjectRepository(db *badger.DB, log *slog.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, log: log}
}

type DiskProject struct {
	ID        string `cbor:"id"`
	UniqueID  string `cbor:"unique_id"`
	Name      string `cbor:"name"`
	OwnerID   string `cbor:"owner_id"`
	CreatedAt int64  `cbor:"created_at"`
}

func projectKey(id string) string { return projectPrefix + id }

// CreateProject stores a project owned by ownerID. uniqueID is the public
// handle and must not be taken.
func (r *ProjectRepository) CreateProject(ctx context.Context, ownerID, name, uniqueID string) (domain.Project, error) {
	project := DiskProject{
		ID:        uuid.New().String(),
		UniqueID:  uniqueID,
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC().UnixNano(),
	}

	err := update(ctx, r.db, uniqueInsertRetry, func(txn *badger.Txn) error {
		taken, err := exists(txn, projectUIDIndex+uniqueID)
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrDuplicateProject
		}
		if err = set(txn, projectKey(project.ID), project); err != nil {
			return err
		}
		if err = txn.Set([]byte(projectUIDIndex+uniqueID), []byte(project.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(projectOwnerIndex+ownerID+":"+project.ID), nil)
	})
	if err != nil {
		return domain.Project{}, storageError(err)
	}
	return toProject(project), nil
}

func (r *ProjectRepository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var project DiskProject
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return loadProject(txn, id, &project)
	})
	if err != nil {
		return domain.Project{}, storageError(err)
	}
	return toProject(project), nil
}

func (r *ProjectRepository) GetProjectByUniqueID(ctx context.Context, uniqueID string) (domain.Project, error) {
	var project DiskProject
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(projectUIDIndex + uniqueID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrProjectNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return loadProject(txn, string(id), &project)
	})
	if err != nil {
		return domain.Project{}, storageError(err)
	}
	return toProject(project), nil
}

// ListProjects returns the projects of an owner, oldest first.
func (r *ProjectRepository) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	var projects []domain.Project
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		for _, id := range keysWithPrefix(txn, projectOwnerIndex+ownerID+":") {
			var project DiskProject
			if err := loadProject(txn, id, &project); err != nil {
				return err
			}
			projects = append(projects, toProject(project))
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

func loadProject(txn *badger.Txn, id string, out *DiskProject) error {
	err := get(txn, projectKey(id), out)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrProjectNotFound
	}
	return err
}

func toProject(d DiskProject) domain.Project {
	return domain.Project{
		ID:        d.ID,
		UniqueID:  d.UniqueID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: fromNanos(d.CreatedAt),
	}
}
