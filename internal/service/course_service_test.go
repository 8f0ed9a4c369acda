package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
)

func TestCourseServiceCreate(t *testing.T) {
	env := newCourseEnv(t)
	ctx := context.Background()

	course, err := env.courses.Create(ctx, env.teacher, dto.CourseCreateRequest{Title: "  Go for the Web  "})
	require.NoError(t, err)
	require.Equal(t, "Go for the Web", course.Title)
	require.NotNil(t, course.InstructorID)
	require.Equal(t, env.teacher.ID, *course.InstructorID)

	admin := ActivityActor{ID: 1000, Role: "ADMIN"}
	assigned, err := env.courses.Create(ctx, admin, dto.CourseCreateRequest{Title: "Assigned course", TeacherID: ptrUint(env.teacher.ID)})
	require.NoError(t, err)
	require.Nil(t, assigned.InstructorID)
	require.True(t, CanManageCourse(models.Course{TeacherID: assigned.TeacherID}, env.teacher))

	_, err = env.courses.Create(ctx, ActivityActor{ID: 5, Role: models.RoleStudent}, dto.CourseCreateRequest{Title: "Student course"})
	require.ErrorIs(t, err, ErrForbidden)

	fetched, err := env.courses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, course.ID, fetched.ID)

	_, err = env.courses.Get(ctx, 999)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCanManageCourse(t *testing.T) {
	owner := uint(3)
	course := models.Course{InstructorID: &owner}

	require.True(t, CanManageCourse(course, ActivityActor{ID: 99, Role: models.RoleAdmin}))
	require.True(t, CanManageCourse(course, ActivityActor{ID: owner, Role: models.RoleTeacher}))
	require.False(t, CanManageCourse(course, ActivityActor{ID: 4, Role: models.RoleTeacher}))
	require.False(t, CanManageCourse(course, ActivityActor{ID: owner, Role: models.RoleStudent}))
}
