package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
)

func TestLessonServiceCompleteIsIdempotent(t *testing.T) {
	env := newCourseEnv(t)
	ctx := context.Background()

	student := env.student(t, "Wulan")
	env.enroll(t, student)

	first, err := env.lessons.Create(ctx, env.teacher, dto.LessonCreateRequest{CourseID: env.course.ID, Title: "HTML basics", Position: 1})
	require.NoError(t, err)
	_, err = env.lessons.Create(ctx, env.teacher, dto.LessonCreateRequest{CourseID: env.course.ID, Title: "CSS basics", Position: 2})
	require.NoError(t, err)
	require.Equal(t, 2, env.progress(t, student).TotalLessons)

	result, err := env.lessons.Complete(ctx, student, first.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Progress.CompletedLessons)
	require.Equal(t, 50, result.Progress.Percent)
	require.False(t, result.CertificateIssued)

	again, err := env.lessons.Complete(ctx, student, first.ID)
	require.NoError(t, err)
	require.Equal(t, 1, again.Progress.CompletedLessons)

	_, err = env.lessons.Complete(ctx, student, 999)
	require.ErrorIs(t, err, ErrLessonNotFound)
}

func TestLessonServiceCompleteDoesNotIssueWhileTasksRemain(t *testing.T) {
	env := newCourseEnv(t)
	ctx := context.Background()

	env.createTask(t, "Unfinished task")
	lesson, err := env.lessons.Create(ctx, env.teacher, dto.LessonCreateRequest{CourseID: env.course.ID, Title: "Only lesson"})
	require.NoError(t, err)

	// No progress row exists yet; completion must still count the open task.
	student := env.student(t, "Xena")
	result, err := env.lessons.Complete(ctx, student, lesson.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Progress.TotalTasks)
	require.Equal(t, 50, result.Progress.Percent)
	require.False(t, result.CertificateIssued)
	require.Zero(t, env.certificateCount(t, student))
}

func TestLessonServiceCreateRequiresManager(t *testing.T) {
	env := newCourseEnv(t)

	_, err := env.lessons.Create(context.Background(), ActivityActor{ID: 99, Role: models.RoleTeacher}, dto.LessonCreateRequest{CourseID: env.course.ID, Title: "Not mine"})
	require.ErrorIs(t, err, ErrForbidden)
}
