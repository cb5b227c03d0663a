// Package access answers who may see and mutate which gradebook data.
// Decisions are pure: a policy is built once from a user's scope and
// every check returns an allow/deny with a human-readable reason.
package access

import (
	"fmt"

	"github.com/kcislk/gradebook-api/internal/models"
)

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func allow(reason string) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Record is a generic string-keyed row subject to scope filtering.
type Record map[string]interface{}

// FieldMapping names the record fields a policy filters on. Empty
// field names skip the corresponding check.
type FieldMapping struct {
	GradeField      string
	CourseTypeField string
	TeacherField    string
}

// Policy is one role's view of the permission rules. One
// implementation exists per role so adding a role is a compile-time
// exercise rather than a string switch.
type Policy interface {
	CanAccessGrade(grade int) Decision
	CanAccessCourseType(courseType models.CourseType) Decision
	CanWrite() Decision
	Filter(records []Record, mapping FieldMapping) []Record
}

// PolicyFor builds the policy matching the scope's role. Unknown roles
// receive the deny-all policy.
func PolicyFor(scope models.UserScope) Policy {
	switch scope.Role {
	case models.RoleAdmin:
		return adminPolicy{}
	case models.RoleOfficeMember:
		return officePolicy{}
	case models.RoleHead:
		return headPolicy{band: scope.GradeBand, track: scope.Track}
	case models.RoleTeacher:
		return teacherPolicy{teacherID: scope.UserID}
	}
	return deniedPolicy{role: string(scope.Role)}
}

type adminPolicy struct{}

func (adminPolicy) CanAccessGrade(int) Decision {
	return allow("admin has full access")
}

func (adminPolicy) CanAccessCourseType(models.CourseType) Decision {
	return allow("admin has full access")
}

func (adminPolicy) CanWrite() Decision {
	return allow("admin has full access")
}

func (adminPolicy) Filter(records []Record, _ FieldMapping) []Record {
	return records
}

type officePolicy struct{}

func (officePolicy) CanAccessGrade(int) Decision {
	return allow("office members may view all grades")
}

func (officePolicy) CanAccessCourseType(models.CourseType) Decision {
	return allow("office members may view all course types")
}

func (officePolicy) CanWrite() Decision {
	return deny("office members have read-only access")
}

func (officePolicy) Filter(records []Record, _ FieldMapping) []Record {
	return records
}

type headPolicy struct {
	band  string
	track models.CourseType
}

func (p headPolicy) CanAccessGrade(grade int) Decision {
	if GradeInBand(grade, p.band) {
		return allow(fmt.Sprintf("grade %d is within assigned band %s", grade, p.band))
	}
	return deny(fmt.Sprintf("grade %d is outside assigned band %s", grade, p.band))
}

func (p headPolicy) CanAccessCourseType(courseType models.CourseType) Decision {
	if p.track != "" && courseType == p.track {
		return allow(fmt.Sprintf("course type %s matches assigned track", courseType))
	}
	return deny(fmt.Sprintf("course type %s does not match assigned track %s", courseType, p.track))
}

func (p headPolicy) CanWrite() Decision {
	return allow("heads may write within their scope")
}

func (p headPolicy) Filter(records []Record, mapping FieldMapping) []Record {
	filtered := make([]Record, 0, len(records))
	for _, record := range records {
		if mapping.GradeField != "" {
			grade, ok := recordGrade(record, mapping.GradeField)
			if !ok || !GradeInBand(grade, p.band) {
				continue
			}
		}
		if mapping.CourseTypeField != "" {
			courseType, ok := recordString(record, mapping.CourseTypeField)
			if !ok || models.CourseType(courseType) != p.track {
				continue
			}
		}
		filtered = append(filtered, record)
	}
	return filtered
}

type teacherPolicy struct {
	teacherID string
}

func (teacherPolicy) CanAccessGrade(int) Decision {
	return deny("teachers may not browse by grade level")
}

func (teacherPolicy) CanAccessCourseType(models.CourseType) Decision {
	return deny("teachers may not browse by course type")
}

func (teacherPolicy) CanWrite() Decision {
	return allow("teachers may write to their own courses")
}

func (p teacherPolicy) Filter(records []Record, mapping FieldMapping) []Record {
	if mapping.TeacherField == "" {
		return nil
	}
	filtered := make([]Record, 0, len(records))
	for _, record := range records {
		owner, ok := recordString(record, mapping.TeacherField)
		if !ok || owner != p.teacherID {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

type deniedPolicy struct {
	role string
}

func (p deniedPolicy) CanAccessGrade(int) Decision {
	return deny(fmt.Sprintf("unknown role %q", p.role))
}

func (p deniedPolicy) CanAccessCourseType(models.CourseType) Decision {
	return deny(fmt.Sprintf("unknown role %q", p.role))
}

func (p deniedPolicy) CanWrite() Decision {
	return deny(fmt.Sprintf("unknown role %q", p.role))
}

func (deniedPolicy) Filter([]Record, FieldMapping) []Record {
	return nil
}

func recordGrade(record Record, field string) (int, bool) {
	switch v := record[field].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func recordString(record Record, field string) (string, bool) {
	v, ok := record[field].(string)
	return v, ok
}
