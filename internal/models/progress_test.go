package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPercentFormulas(t *testing.T) {
	cases := []struct {
		name     string
		progress Progress
		combined int
		taskOnly int
	}{
		{name: "empty course", progress: Progress{}, combined: 100, taskOnly: 100},
		{name: "half tasks", progress: Progress{CompletedTasks: 1, TotalTasks: 2}, combined: 50, taskOnly: 50},
		{name: "two of three rounds up", progress: Progress{CompletedTasks: 2, TotalTasks: 3}, combined: 67, taskOnly: 67},
		{name: "one of three rounds down", progress: Progress{CompletedTasks: 1, TotalTasks: 3}, combined: 33, taskOnly: 33},
		{name: "half rounds up", progress: Progress{CompletedTasks: 1, TotalTasks: 8}, combined: 13, taskOnly: 13},
		{name: "lessons only", progress: Progress{CompletedLessons: 1, TotalLessons: 4}, combined: 25, taskOnly: 100},
		{name: "tasks done lessons open", progress: Progress{CompletedTasks: 2, TotalTasks: 2, TotalLessons: 2}, combined: 50, taskOnly: 100},
		{name: "everything done", progress: Progress{CompletedTasks: 3, TotalTasks: 3, CompletedLessons: 2, TotalLessons: 2}, combined: 100, taskOnly: 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.combined, CombinedPercent(tc.progress))
			require.Equal(t, tc.taskOnly, TaskOnlyPercent(tc.progress))
		})
	}
}

func TestProgressTasksComplete(t *testing.T) {
	require.True(t, Progress{}.TasksComplete())
	require.True(t, Progress{CompletedTasks: 2, TotalTasks: 2}.TasksComplete())
	require.False(t, Progress{CompletedTasks: 1, TotalTasks: 2}.TasksComplete())
}

func TestQuizJSONColumns(t *testing.T) {
	var question QuizQuestion
	question.SetOptions([]string{"a", "b"})
	require.Equal(t, []string{"a", "b"}, question.OptionList())

	var attempt QuizAttempt
	require.Empty(t, attempt.AnswerList())
	attempt.SetAnswers([]int{1, 0})
	require.Equal(t, []int{1, 0}, attempt.AnswerList())
}

func TestCourseOwnedBy(t *testing.T) {
	instructor, teacher := uint(1), uint(2)
	course := Course{InstructorID: &instructor, TeacherID: &teacher}

	require.True(t, course.OwnedBy(1))
	require.True(t, course.OwnedBy(2))
	require.False(t, course.OwnedBy(3))
	require.False(t, course.OwnedBy(0))
}
