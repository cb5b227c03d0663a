package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kcislk/gradebook-api/internal/models"
)

// CourseRepository reads courses and their enrollment rosters.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns one course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, course_type, grade, level, teacher_id, created_at, updated_at
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListByGradeAndType returns courses matching a grade level and course
// type, used by head-scoped browse views.
func (r *CourseRepository) ListByGradeAndType(ctx context.Context, grade int, courseType models.CourseType) ([]models.Course, error) {
	const query = `SELECT id, name, course_type, grade, level, teacher_id, created_at, updated_at
        FROM courses WHERE grade = $1 AND course_type = $2 ORDER BY name`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, grade, courseType); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByTeacher returns the courses assigned to a teacher.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	const query = `SELECT id, name, course_type, grade, level, teacher_id, created_at, updated_at
        FROM courses WHERE teacher_id = $1 ORDER BY name`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// ListStudents returns the enrolled student IDs for a course and period.
func (r *CourseRepository) ListStudents(ctx context.Context, courseID, periodID string) ([]string, error) {
	const query = `SELECT student_id FROM enrollments
        WHERE course_id = $1 AND period_id = $2 ORDER BY student_id`
	var students []string
	if err := r.db.SelectContext(ctx, &students, query, courseID, periodID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// CountStudents returns the enrolment count for a course and period.
func (r *CourseRepository) CountStudents(ctx context.Context, courseID, periodID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND period_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, periodID); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}
