package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/internal/models"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
)

type catalogReader interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListFaculty(ctx context.Context) ([]models.Faculty, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListStudents(ctx context.Context, program string, year int) ([]models.Student, error)
}

// CatalogService serves the provisioned scheduling inputs. It exists so
// admins can solve against the stored catalog instead of posting the
// whole resource set inline with every request.
type CatalogService struct {
	repo catalogReader
	log  *zap.Logger
}

func NewCatalogService(repo catalogReader, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{repo: repo, log: log}
}

// Enabled reports whether a catalog backend is wired.
func (s *CatalogService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Courses lists every offerable course.
func (s *CatalogService) Courses(ctx context.Context) ([]models.Course, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "catalog backend is not configured")
	}
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "catalog query failed")
	}
	return courses, nil
}

// Faculty lists every instructor.
func (s *CatalogService) Faculty(ctx context.Context) ([]models.Faculty, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "catalog backend is not configured")
	}
	faculty, err := s.repo.ListFaculty(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "catalog query failed")
	}
	return faculty, nil
}

// Rooms lists every teaching space.
func (s *CatalogService) Rooms(ctx context.Context) ([]models.Room, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "catalog backend is not configured")
	}
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "catalog query failed")
	}
	return rooms, nil
}

// Students lists enrolled students, optionally filtered.
func (s *CatalogService) Students(ctx context.Context, program string, year int) ([]models.Student, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "catalog backend is not configured")
	}
	students, err := s.repo.ListStudents(ctx, program, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "catalog query failed")
	}
	return students, nil
}
