package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/slotwise/timetable-api/internal/models"
)

// CatalogRepository reads the scheduling inputs (courses, faculty,
// rooms, students) that were provisioned outside this service. It is
// strictly read-only: solve runs never write back to the catalog.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type courseRow struct {
	ID             string  `db:"id"`
	Name           string  `db:"name"`
	Kind           string  `db:"kind"`
	Credits        int     `db:"credits"`
	TheoryHours    int     `db:"theory_hours"`
	LabHours       int     `db:"lab_hours"`
	MaxTheoryCap   int     `db:"max_theory_capacity"`
	MaxLabCap      int     `db:"max_lab_capacity"`
	Expertise      string  `db:"required_expertise"`
	IsCompulsory   bool    `db:"is_compulsory"`
	DemandFraction float64 `db:"demand_fraction"`
}

// ListCourses returns every offerable course.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	const query = `
		SELECT id, name, kind, credits, theory_hours, lab_hours,
		       max_theory_capacity, max_lab_capacity,
		       COALESCE(required_expertise, '') AS required_expertise,
		       is_compulsory, demand_fraction
		FROM courses
		ORDER BY id`

	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Course{
			ID:                row.ID,
			Name:              row.Name,
			Kind:              models.CourseKind(row.Kind),
			Credits:           row.Credits,
			TheoryHours:       row.TheoryHours,
			LabHours:          row.LabHours,
			MaxTheoryCapacity: row.MaxTheoryCap,
			MaxLabCapacity:    row.MaxLabCap,
			RequiredExpertise: splitTags(row.Expertise),
			IsCompulsory:      row.IsCompulsory,
			DemandFraction:    row.DemandFraction,
		})
	}
	return out, nil
}

type facultyRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Tags     string `db:"expertise"`
	MaxHours int    `db:"max_hours_per_week"`
}

// ListFaculty returns every instructor available to the assigners.
func (r *CatalogRepository) ListFaculty(ctx context.Context) ([]models.Faculty, error) {
	const query = `
		SELECT id, name, COALESCE(expertise, '') AS expertise, max_hours_per_week
		FROM faculty
		ORDER BY id`

	var rows []facultyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	out := make([]models.Faculty, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Faculty{
			ID:              row.ID,
			Name:            row.Name,
			Expertise:       splitTags(row.Tags),
			MaxHoursPerWeek: row.MaxHours,
		})
	}
	return out, nil
}

// ListRooms returns every teaching space.
func (r *CatalogRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, kind FROM rooms ORDER BY id`

	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListStudents returns enrolled students, optionally narrowed by
// program and year.
func (r *CatalogRepository) ListStudents(ctx context.Context, program string, year int) ([]models.Student, error) {
	query := `SELECT id, name, program, year FROM students`
	var clauses []string
	var args []interface{}
	if program != "" {
		args = append(args, program)
		clauses = append(clauses, fmt.Sprintf("program = $%d", len(args)))
	}
	if year > 0 {
		args = append(args, year)
		clauses = append(clauses, fmt.Sprintf("year = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// splitTags turns a comma separated tag column into a clean slice.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
