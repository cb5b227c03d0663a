package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcislk/gradebook-api/internal/models"
)

func headScope() models.UserScope {
	return models.UserScope{
		UserID:    "head-1",
		Role:      models.RoleHead,
		GradeBand: "3-4",
		Track:     models.CourseTypeLT,
	}
}

func mixedRecords() []Record {
	return []Record{
		{"id": "r1", "grade": 3, "course_type": "LT", "teacher_id": "t-1"},
		{"id": "r2", "grade": 4, "course_type": "LT", "teacher_id": "t-2"},
		{"id": "r3", "grade": 3, "course_type": "IT", "teacher_id": "t-1"},
		{"id": "r4", "grade": 5, "course_type": "LT", "teacher_id": "t-1"},
		{"id": "r5", "grade": 2, "course_type": "KCFS", "teacher_id": "t-3"},
	}
}

func defaultMapping() FieldMapping {
	return FieldMapping{GradeField: "grade", CourseTypeField: "course_type", TeacherField: "teacher_id"}
}

func TestAdminPolicyAllowsEverything(t *testing.T) {
	policy := PolicyFor(models.UserScope{UserID: "a-1", Role: models.RoleAdmin})

	assert.True(t, policy.CanAccessGrade(6).Allowed)
	assert.True(t, policy.CanAccessCourseType(models.CourseTypeKCFS).Allowed)
	assert.True(t, policy.CanWrite().Allowed)
	assert.Len(t, policy.Filter(mixedRecords(), defaultMapping()), 5)
}

func TestOfficePolicyReadOnly(t *testing.T) {
	policy := PolicyFor(models.UserScope{UserID: "o-1", Role: models.RoleOfficeMember})

	assert.True(t, policy.CanAccessGrade(1).Allowed)
	assert.True(t, policy.CanAccessCourseType(models.CourseTypeIT).Allowed)

	write := policy.CanWrite()
	assert.False(t, write.Allowed)
	assert.NotEmpty(t, write.Reason)

	assert.Len(t, policy.Filter(mixedRecords(), defaultMapping()), 5)
}

func TestHeadPolicyGradeBand(t *testing.T) {
	policy := PolicyFor(headScope())

	assert.True(t, policy.CanAccessGrade(3).Allowed)
	assert.True(t, policy.CanAccessGrade(4).Allowed)

	denied := policy.CanAccessGrade(5)
	assert.False(t, denied.Allowed)
	assert.Contains(t, denied.Reason, "outside")
}

func TestHeadPolicyCourseType(t *testing.T) {
	policy := PolicyFor(headScope())

	assert.True(t, policy.CanAccessCourseType(models.CourseTypeLT).Allowed)
	assert.False(t, policy.CanAccessCourseType(models.CourseTypeIT).Allowed)
	assert.True(t, policy.CanWrite().Allowed)
}

func TestHeadPolicyFilterBandAndTrack(t *testing.T) {
	policy := PolicyFor(headScope())

	filtered := policy.Filter(mixedRecords(), defaultMapping())
	require.Len(t, filtered, 2)
	assert.Equal(t, "r1", filtered[0]["id"])
	assert.Equal(t, "r2", filtered[1]["id"])
}

func TestHeadPolicyFilterGradeOnlyMapping(t *testing.T) {
	policy := PolicyFor(headScope())

	filtered := policy.Filter(mixedRecords(), FieldMapping{GradeField: "grade"})
	// Without a course-type field only the band check applies.
	require.Len(t, filtered, 3)
}

func TestHeadPolicyInvalidBandFailsClosed(t *testing.T) {
	scope := headScope()
	scope.GradeBand = "x-y"
	policy := PolicyFor(scope)

	assert.False(t, policy.CanAccessGrade(3).Allowed)
	assert.Empty(t, policy.Filter(mixedRecords(), defaultMapping()))
}

func TestTeacherPolicyOwnRecordsOnly(t *testing.T) {
	policy := PolicyFor(models.UserScope{UserID: "t-1", Role: models.RoleTeacher})

	assert.False(t, policy.CanAccessGrade(3).Allowed)
	assert.False(t, policy.CanAccessCourseType(models.CourseTypeLT).Allowed)
	assert.True(t, policy.CanWrite().Allowed)

	filtered := policy.Filter(mixedRecords(), defaultMapping())
	require.Len(t, filtered, 3)
	for _, record := range filtered {
		assert.Equal(t, "t-1", record["teacher_id"])
	}
}

func TestTeacherPolicyNoTeacherFieldMapping(t *testing.T) {
	policy := PolicyFor(models.UserScope{UserID: "t-1", Role: models.RoleTeacher})
	assert.Empty(t, policy.Filter(mixedRecords(), FieldMapping{GradeField: "grade"}))
}

func TestUnknownRoleDeniesAll(t *testing.T) {
	policy := PolicyFor(models.UserScope{UserID: "u-1", Role: "visitor"})

	assert.False(t, policy.CanAccessGrade(1).Allowed)
	assert.False(t, policy.CanAccessCourseType(models.CourseTypeLT).Allowed)
	assert.False(t, policy.CanWrite().Allowed)
	assert.Empty(t, policy.Filter(mixedRecords(), defaultMapping()))
}

func TestDecisionsCarryReasons(t *testing.T) {
	policy := PolicyFor(headScope())
	for _, decision := range []Decision{
		policy.CanAccessGrade(3),
		policy.CanAccessGrade(6),
		policy.CanAccessCourseType(models.CourseTypeIT),
		policy.CanWrite(),
	} {
		assert.NotEmpty(t, decision.Reason)
	}
}
