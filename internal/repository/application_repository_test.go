package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/welldanyogia/job-application-tracker/internal/errors"
	"github.com/welldanyogia/job-application-tracker/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ApplicationRepositoryTestSuite is the test suite for ApplicationRepository
type ApplicationRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo ApplicationRepository
}

// SetupSuite runs once before all tests
func (s *ApplicationRepositoryTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	// Every pooled connection to :memory: would get its own database
	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Application{})
	require.NoError(s.T(), err)

	s.db = db
	s.repo = NewApplicationRepository(db)
}

// TearDownSuite runs once after all tests
func (s *ApplicationRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test
func (s *ApplicationRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM applications")
}

// TestApplicationRepositoryTestSuite runs the test suite
func TestApplicationRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationRepositoryTestSuite))
}

func (s *ApplicationRepositoryTestSuite) newApplication(id uint, email, status string) *models.Application {
	resume := "0b7c5b8e-6a55-4c8e-9a4e-3f2b1c0d9e8f.pdf"
	return &models.Application{
		ID:                   id,
		Name:                 "Jane Candidate",
		EmailID:              email,
		MobileNumber:         "9876543210",
		ExperienceRange:      "2-4 years",
		ResumeFilename:       &resume,
		JobRole:              "Backend Engineer",
		JobLink:              "https://jobs.example.com/42",
		Notes:                "Available immediately",
		Status:               status,
		ApplicationTimestamp: time.Now().UTC().Truncate(time.Second),
	}
}

// ==================== Create Tests ====================

func (s *ApplicationRepositoryTestSuite) TestCreate_Success() {
	app := s.newApplication(1234, "jane@example.com", models.StatusApplied)

	err := s.repo.Create(context.Background(), app)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), uint(1234), app.ID)
}

func (s *ApplicationRepositoryTestSuite) TestCreate_DuplicateEmail_ReturnsErrDuplicateEmail() {
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(1001, "dup@example.com", models.StatusApplied)))

	err := s.repo.Create(context.Background(), s.newApplication(1002, "dup@example.com", models.StatusApplied))

	assert.ErrorIs(s.T(), err, ErrDuplicateEmail)
	assert.ErrorIs(s.T(), err, ErrDuplicateEntry)
	assert.True(s.T(), apperrors.IsDuplicateEntry(err))
}

func (s *ApplicationRepositoryTestSuite) TestCreate_DuplicateID_ReturnsErrDuplicateID() {
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(1001, "first@example.com", models.StatusApplied)))

	err := s.repo.Create(context.Background(), s.newApplication(1001, "second@example.com", models.StatusApplied))

	assert.ErrorIs(s.T(), err, ErrDuplicateID)
	assert.NotErrorIs(s.T(), err, ErrDuplicateEmail)
}

// ==================== GetByID Tests ====================

func (s *ApplicationRepositoryTestSuite) TestGetByID_Found() {
	app := s.newApplication(4321, "found@example.com", models.StatusApplied)
	require.NoError(s.T(), s.repo.Create(context.Background(), app))

	result, err := s.repo.GetByID(context.Background(), 4321)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "found@example.com", result.EmailID)
	assert.Equal(s.T(), "Jane Candidate", result.Name)
	require.NotNil(s.T(), result.ResumeFilename)
	assert.Equal(s.T(), *app.ResumeFilename, *result.ResumeFilename)
}

func (s *ApplicationRepositoryTestSuite) TestGetByID_NotFound() {
	result, err := s.repo.GetByID(context.Background(), 9999)

	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.True(s.T(), apperrors.IsNotFound(err))
	assert.Nil(s.T(), result)
}

// ==================== GetByEmail Tests ====================

func (s *ApplicationRepositoryTestSuite) TestGetByEmail_Found() {
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(2222, "email@example.com", models.StatusApplied)))

	result, err := s.repo.GetByEmail(context.Background(), "email@example.com")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint(2222), result.ID)
}

func (s *ApplicationRepositoryTestSuite) TestGetByEmail_NotFound() {
	result, err := s.repo.GetByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Nil(s.T(), result)
}

// ==================== Save Tests ====================

func (s *ApplicationRepositoryTestSuite) TestSave_UpdatesExistingRecord() {
	app := s.newApplication(3333, "save@example.com", models.StatusApplied)
	require.NoError(s.T(), s.repo.Create(context.Background(), app))

	app.Status = models.StatusInterview
	require.NoError(s.T(), s.repo.Save(context.Background(), app))

	result, err := s.repo.GetByID(context.Background(), 3333)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusInterview, result.Status)

	count, err := s.repo.Count(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), count)
}

// ==================== List / Exists / Delete Tests ====================

func (s *ApplicationRepositoryTestSuite) TestList_ReturnsAllRecords() {
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(1111, "a@example.com", models.StatusApplied)))
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(2222, "b@example.com", models.StatusRejected)))

	result, err := s.repo.List(context.Background())

	require.NoError(s.T(), err)
	assert.Len(s.T(), result, 2)
}

func (s *ApplicationRepositoryTestSuite) TestList_EmptyIsNotNil() {
	result, err := s.repo.List(context.Background())

	require.NoError(s.T(), err)
	assert.NotNil(s.T(), result)
	assert.Empty(s.T(), result)
}

func (s *ApplicationRepositoryTestSuite) TestExistsByID() {
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(5555, "exists@example.com", models.StatusApplied)))

	exists, err := s.repo.ExistsByID(context.Background(), 5555)
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)

	exists, err = s.repo.ExistsByID(context.Background(), 5556)
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *ApplicationRepositoryTestSuite) TestDelete_RemovesRecord() {
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(6666, "delete@example.com", models.StatusApplied)))

	err := s.repo.Delete(context.Background(), 6666)
	require.NoError(s.T(), err)

	_, err = s.repo.GetByID(context.Background(), 6666)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *ApplicationRepositoryTestSuite) TestDelete_MissingIDIsIdempotent() {
	err := s.repo.Delete(context.Background(), 7777)

	assert.NoError(s.T(), err)
}

// ==================== Statistics Tests ====================

func (s *ApplicationRepositoryTestSuite) TestCountByStatus_SumsToCount() {
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(1001, "s1@example.com", models.StatusApplied)))
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(1002, "s2@example.com", models.StatusApplied)))
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(1003, "s3@example.com", models.StatusSelected)))
	require.NoError(s.T(), s.repo.Create(context.Background(), s.newApplication(1004, "s4@example.com", "On Hold")))

	byStatus, err := s.repo.CountByStatus(context.Background())
	require.NoError(s.T(), err)
	total, err := s.repo.Count(context.Background())
	require.NoError(s.T(), err)

	assert.Equal(s.T(), map[string]int64{
		models.StatusApplied:  2,
		models.StatusSelected: 1,
		"On Hold":             1,
	}, byStatus)

	var sum int64
	for _, n := range byStatus {
		sum += n
	}
	assert.Equal(s.T(), total, sum)
}

func (s *ApplicationRepositoryTestSuite) TestCountByStatus_EmptyTable() {
	byStatus, err := s.repo.CountByStatus(context.Background())

	require.NoError(s.T(), err)
	assert.Empty(s.T(), byStatus)
}

// ==================== Failure paths ====================

func newMockRepository(t *testing.T) (ApplicationRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       db,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewApplicationRepository(gormDB), mock
}

func TestApplicationRepository_List_WrapsDatabaseFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(`SELECT \* FROM "applications"`).WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_Create_MapsPostgresUniqueViolations(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   string
		wantErr error
	}{
		{
			name:    "email index",
			dbErr:   `ERROR: duplicate key value violates unique constraint "idx_applications_email_id" (SQLSTATE 23505)`,
			wantErr: ErrDuplicateEmail,
		},
		{
			name:    "primary key",
			dbErr:   `ERROR: duplicate key value violates unique constraint "applications_pkey" (SQLSTATE 23505)`,
			wantErr: ErrDuplicateID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectExec(`INSERT INTO "applications"`).WillReturnError(errors.New(tt.dbErr))

			err := repo.Create(context.Background(), &models.Application{
				ID:      1500,
				EmailID: "race@example.com",
				Status:  models.StatusApplied,
			})

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApplicationRepository_Delete_WrapsDatabaseFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec(`DELETE FROM "applications"`).WillReturnError(errors.New("disk I/O error"))

	err := repo.Delete(context.Background(), 1234)

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}
