package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Task{},
		&TaskSubmission{},
		&Progress{},
		&Certificate{},
		&Lesson{},
		&LessonCompletion{},
		&QuizQuestion{},
		&QuizAttempt{},
		&Notification{},
		&ActivityLog{},
	}
}
