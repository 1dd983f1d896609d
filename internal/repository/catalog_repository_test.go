package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/timetable-api/internal/models"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCatalogRepositoryListCourses(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "kind", "credits", "theory_hours", "lab_hours", "max_theory_capacity", "max_lab_capacity", "required_expertise", "is_compulsory", "demand_fraction"}).
		AddRow("CS101", "Programming I", "core", 4, 3, 0, 60, 30, "programming, algorithms", true, 1.0).
		AddRow("CH202", "Chemistry Lab", "lab", 2, 0, 3, 60, 24, "", true, 1.0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, kind, credits")).
		WillReturnRows(rows)

	courses, err := repo.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, models.CourseCore, courses[0].Kind)
	require.Equal(t, []string{"programming", "algorithms"}, courses[0].RequiredExpertise)
	require.Nil(t, courses[1].RequiredExpertise)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListFaculty(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "expertise", "max_hours_per_week"}).
		AddRow("F1", "Dr. Rao", "databases,networks", 12)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, COALESCE(expertise, '')")).
		WillReturnRows(rows)

	faculty, err := repo.ListFaculty(context.Background())
	require.NoError(t, err)
	require.Len(t, faculty, 1)
	require.Equal(t, []string{"databases", "networks"}, faculty[0].Expertise)
	require.Equal(t, 12, faculty[0].MaxHoursPerWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListRooms(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "capacity", "kind"}).
		AddRow("R1", "Main Hall", 120, "auditorium").
		AddRow("L1", "Chem Lab", 24, "lab")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, kind FROM rooms")).
		WillReturnRows(rows)

	rooms, err := repo.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, models.RoomLab, rooms[1].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListStudentsFiltered(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "program", "year"}).
		AddRow("S1", "Asha", "CSE", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, program, year FROM students WHERE program = $1 AND year = $2")).
		WithArgs("CSE", 2).
		WillReturnRows(rows)

	students, err := repo.ListStudents(context.Background(), "CSE", 2)
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "CSE", students[0].Program)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListStudentsUnfiltered(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "program", "year"}).
		AddRow("S1", "Asha", "CSE", 2).
		AddRow("S2", "Vikram", "ECE", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, program, year FROM students ORDER BY id")).
		WillReturnRows(rows)

	students, err := repo.ListStudents(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitTags(t *testing.T) {
	require.Nil(t, splitTags("  "))
	require.Equal(t, []string{"a", "b"}, splitTags("a, ,b"))
}
