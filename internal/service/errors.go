package service

import "errors"

var (
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrSubmissionNotFound indicates the submission does not exist or belongs to another task.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrProgressNotFound indicates the student is not enrolled in the course.
	ErrProgressNotFound = errors.New("progress not found")
	// ErrCertificateNotFound indicates the certificate does not exist.
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrLessonNotFound indicates the lesson does not exist.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrNotificationNotFound indicates the notification does not exist for the user.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrForbidden indicates the actor may not manage the course.
	ErrForbidden = errors.New("forbidden")
	// ErrQuizLocked indicates the student has not passed every task yet.
	ErrQuizLocked = errors.New("quiz is locked until all tasks are passed")

	// ErrAlreadyPassed indicates a passed submission cannot be replaced.
	ErrAlreadyPassed = errors.New("task already passed")
	// ErrAlreadyEnrolled indicates the progress row already exists.
	ErrAlreadyEnrolled = errors.New("already enrolled")
	// ErrQuizAlreadySubmitted indicates every current question has been answered.
	ErrQuizAlreadySubmitted = errors.New("quiz already submitted")

	// ErrInvalidStatus indicates an unrecognised grading verdict.
	ErrInvalidStatus = errors.New("invalid grading status")
	// ErrAnswerRequired indicates an empty task answer.
	ErrAnswerRequired = errors.New("answer is required")
	// ErrInvalidAnswers indicates quiz answers that do not fit the questions.
	ErrInvalidAnswers = errors.New("invalid quiz answers")
	// ErrInvalidAttachment indicates an unsupported task attachment.
	ErrInvalidAttachment = errors.New("unsupported attachment type")
	// ErrAttachmentStorageUnavailable indicates an attachment was sent but no file storage is configured.
	ErrAttachmentStorageUnavailable = errors.New("attachment storage is not configured")
	// ErrInvalidDeadline indicates a deadline that cannot be parsed.
	ErrInvalidDeadline = errors.New("invalid deadline")
	// ErrInvalidQuestion indicates a question whose correct answer is not one of its options.
	ErrInvalidQuestion = errors.New("correct answer must reference an option")
)
