package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-course-api/internal/models"
)

func TestMigrateCreatesUniqueLedgerIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	migrator := db.Migrator()
	require.True(t, migrator.HasIndex(&models.Progress{}, "idx_progresses_student_course"))
	require.True(t, migrator.HasIndex(&models.Certificate{}, "idx_certificates_user_course"))
	require.True(t, migrator.HasIndex(&models.TaskSubmission{}, "idx_task_submissions_task_student"))

	require.NoError(t, db.Create(&models.Certificate{UserID: 1, CourseID: 1, CertificateNo: "A"}).Error)
	require.Error(t, db.Create(&models.Certificate{UserID: 1, CourseID: 1, CertificateNo: "B"}).Error)
}

func TestConnectNATSDisabledWithoutURL(t *testing.T) {
	conn, err := ConnectNATS("", "test")
	require.NoError(t, err)
	require.Nil(t, conn)
}

func TestConnectPostgresRequiresDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)
}
