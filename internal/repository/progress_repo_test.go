package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-course-api/internal/models"
)

func TestProgressRepositoryCreateDoesNothingOnDuplicate(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Progress{StudentID: 1, CourseID: 1, TotalTasks: 3})
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.Create(ctx, &models.Progress{StudentID: 1, CourseID: 1, TotalTasks: 9})
	require.NoError(t, err)
	require.False(t, created)

	row, err := repo.Get(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 3, row.TotalTasks)
}

func TestProgressRepositoryUpsertsTouchOnlyTheirColumns(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()

	row, err := repo.UpsertTaskCounts(ctx, 2, 5, 1, 4)
	require.NoError(t, err)
	require.Equal(t, 1, row.CompletedTasks)
	require.Equal(t, 4, row.TotalTasks)

	row, err = repo.UpsertLessonCounts(ctx, 2, 5, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 1, row.CompletedTasks)
	require.Equal(t, 4, row.TotalTasks)
	require.Equal(t, 2, row.CompletedLessons)
	require.Equal(t, 3, row.TotalLessons)

	row, err = repo.UpsertQuizScore(ctx, 2, 5, 7)
	require.NoError(t, err)
	require.NotNil(t, row.QuizScore)
	require.Equal(t, 7, *row.QuizScore)
	require.Equal(t, 4, row.TotalTasks)
	require.Equal(t, 3, row.TotalLessons)

	row, err = repo.UpsertTaskCounts(ctx, 2, 5, 4, 4)
	require.NoError(t, err)
	require.Equal(t, 4, row.CompletedTasks)
	require.Equal(t, 2, row.CompletedLessons)
	require.Equal(t, 7, *row.QuizScore)
}

func TestProgressRepositoryAdjustTotals(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Progress{StudentID: 1, CourseID: 9, TotalTasks: 1})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Progress{StudentID: 2, CourseID: 9})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Progress{StudentID: 1, CourseID: 10, TotalTasks: 5})
	require.NoError(t, err)

	affected, err := repo.AdjustTotalTasks(ctx, 9, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	affected, err = repo.AdjustTotalTasks(ctx, 9, -2)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected, "rows that would go negative are skipped")

	first, err := repo.Get(ctx, 1, 9)
	require.NoError(t, err)
	require.Equal(t, 0, first.TotalTasks)

	second, err := repo.Get(ctx, 2, 9)
	require.NoError(t, err)
	require.Equal(t, 1, second.TotalTasks)

	untouched, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 5, untouched.TotalTasks)

	affected, err = repo.AdjustTotalLessons(ctx, 9, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	ids, err := repo.ListStudentIDs(ctx, 9)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{1, 2}, ids)
}
