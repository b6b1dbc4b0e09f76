package storage

import (
	"context"
	"testing"
	"time"

	"despesas/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositoryTestSuite struct {
	suite.Suite
	repo *Repository
	ctx  context.Context
}

func (suite *RepositoryTestSuite) SetupTest() {
	repo, err := NewRepository(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.repo = repo
	suite.ctx = context.Background()
}

func (suite *RepositoryTestSuite) TearDownTest() {
	if suite.repo != nil {
		suite.repo.Close()
	}
}

func (suite *RepositoryTestSuite) record(property, date string, fields map[string]int64) core.Record {
	d, err := core.ParseDate(date)
	require.NoError(suite.T(), err)
	rec := core.Record{
		UserID:   "user-1",
		Property: property,
		Date:     d,
		Fields:   make(map[string]core.Money),
	}
	for k, cents := range fields {
		rec.Fields[k] = core.Money{Cents: cents}
	}
	return rec
}

func (suite *RepositoryTestSuite) TestCreateAndGetRecord() {
	rec := suite.record("Colina B1", "2025-03-10", map[string]int64{
		"condominio": 10000,
		"luz":        5000,
	})

	id, err := suite.repo.CreateRecord(suite.ctx, rec)
	require.NoError(suite.T(), err)
	assert.Positive(suite.T(), id)

	got, err := suite.repo.GetRecord(suite.ctx, "user-1", id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Colina B1", got.Property)
	assert.Equal(suite.T(), "2025-03-10", got.Date.String())
	assert.Equal(suite.T(), core.StatusUnpaid, got.Status)
	assert.Equal(suite.T(), int64(10000), got.Fields["condominio"].Cents)
	assert.Equal(suite.T(), int64(5000), got.Fields["luz"].Cents)
}

func (suite *RepositoryTestSuite) TestCreateRecordSkipsZeroFields() {
	rec := suite.record("Colina B1", "2025-03-10", map[string]int64{
		"condominio": 10000,
		"agua":       0,
	})

	id, err := suite.repo.CreateRecord(suite.ctx, rec)
	require.NoError(suite.T(), err)

	got, err := suite.repo.GetRecord(suite.ctx, "user-1", id)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), got.Fields, 1)
	assert.NotContains(suite.T(), got.Fields, "agua")
}

func (suite *RepositoryTestSuite) TestGetRecordOtherUser() {
	id, err := suite.repo.CreateRecord(suite.ctx, suite.record("Colina B1", "2025-03-10", map[string]int64{"luz": 100}))
	require.NoError(suite.T(), err)

	_, err = suite.repo.GetRecord(suite.ctx, "user-2", id)
	assert.ErrorIs(suite.T(), err, ErrNotFoundOrForbidden)
}

func (suite *RepositoryTestSuite) TestListRecordsByProperty() {
	_, err := suite.repo.CreateRecord(suite.ctx, suite.record("Colina B1", "2025-03-10", map[string]int64{"luz": 100}))
	require.NoError(suite.T(), err)
	_, err = suite.repo.CreateRecord(suite.ctx, suite.record("Colina B1", "2025-04-10", map[string]int64{"luz": 200}))
	require.NoError(suite.T(), err)
	_, err = suite.repo.CreateRecord(suite.ctx, suite.record("Solaris", "2025-03-10", map[string]int64{"aluguel": 300}))
	require.NoError(suite.T(), err)

	all, err := suite.repo.ListRecords(suite.ctx, "user-1", "")
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 3)

	colina, err := suite.repo.ListRecords(suite.ctx, "user-1", "Colina B1")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), colina, 2)
	// Newest date first.
	assert.Equal(suite.T(), "2025-04-10", colina[0].Date.String())
	assert.Equal(suite.T(), int64(200), colina[0].Fields["luz"].Cents)
}

func (suite *RepositoryTestSuite) TestListRecordsOtherUserEmpty() {
	_, err := suite.repo.CreateRecord(suite.ctx, suite.record("Colina B1", "2025-03-10", map[string]int64{"luz": 100}))
	require.NoError(suite.T(), err)

	records, err := suite.repo.ListRecords(suite.ctx, "user-2", "")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), records)
}

func (suite *RepositoryTestSuite) TestUpdateRecordStatus() {
	id, err := suite.repo.CreateRecord(suite.ctx, suite.record("Colina B1", "2025-03-10", map[string]int64{"luz": 100}))
	require.NoError(suite.T(), err)

	err = suite.repo.UpdateRecordStatus(suite.ctx, "user-1", id, core.StatusPaid)
	require.NoError(suite.T(), err)

	got, err := suite.repo.GetRecord(suite.ctx, "user-1", id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), core.StatusPaid, got.Status)

	err = suite.repo.UpdateRecordStatus(suite.ctx, "user-2", id, core.StatusUnpaid)
	assert.ErrorIs(suite.T(), err, ErrNotFoundOrForbidden)
}

func (suite *RepositoryTestSuite) TestDeleteRecord() {
	id, err := suite.repo.CreateRecord(suite.ctx, suite.record("Colina B1", "2025-03-10", map[string]int64{"luz": 100}))
	require.NoError(suite.T(), err)

	err = suite.repo.DeleteRecord(suite.ctx, "user-2", id)
	assert.ErrorIs(suite.T(), err, ErrNotFoundOrForbidden)

	err = suite.repo.DeleteRecord(suite.ctx, "user-1", id)
	require.NoError(suite.T(), err)

	_, err = suite.repo.GetRecord(suite.ctx, "user-1", id)
	assert.ErrorIs(suite.T(), err, ErrNotFoundOrForbidden)

	err = suite.repo.DeleteRecord(suite.ctx, "user-1", id)
	assert.ErrorIs(suite.T(), err, ErrNotFoundOrForbidden)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

// SessionStoreTestSuite covers the session state transitions.
type SessionStoreTestSuite struct {
	suite.Suite
	repo *Repository
	ctx  context.Context
	now  time.Time
}

func (suite *SessionStoreTestSuite) SetupTest() {
	repo, err := NewRepository(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.repo = repo
	suite.ctx = context.Background()
	suite.now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (suite *SessionStoreTestSuite) TearDownTest() {
	if suite.repo != nil {
		suite.repo.Close()
	}
}

func (suite *SessionStoreTestSuite) TestCreateReplacesActiveSession() {
	first, err := suite.repo.CreateSession(suite.ctx, "user-1", suite.now)
	require.NoError(suite.T(), err)

	second, err := suite.repo.CreateSession(suite.ctx, "user-1", suite.now.Add(time.Minute))
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), first, second)

	s, err := suite.repo.ActiveSession(suite.ctx, "user-1")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), s)
	assert.Equal(suite.T(), second, s.ID)
	assert.True(suite.T(), s.Active)
}

func (suite *SessionStoreTestSuite) TestActiveSessionNone() {
	s, err := suite.repo.ActiveSession(suite.ctx, "user-1")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), s)
}

func (suite *SessionStoreTestSuite) TestTouchSession() {
	_, err := suite.repo.CreateSession(suite.ctx, "user-1", suite.now)
	require.NoError(suite.T(), err)

	later := suite.now.Add(5 * time.Minute)
	touched, err := suite.repo.TouchSession(suite.ctx, "user-1", later)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), touched)

	s, err := suite.repo.ActiveSession(suite.ctx, "user-1")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), s)
	assert.True(suite.T(), s.LastActivity.Equal(later))

	touched, err = suite.repo.TouchSession(suite.ctx, "user-2", later)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), touched)
}

func (suite *SessionStoreTestSuite) TestExpireSessionIdempotent() {
	id, err := suite.repo.CreateSession(suite.ctx, "user-1", suite.now)
	require.NoError(suite.T(), err)

	expired, err := suite.repo.ExpireSession(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), expired)

	expired, err = suite.repo.ExpireSession(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), expired)

	s, err := suite.repo.ActiveSession(suite.ctx, "user-1")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), s)
}

func (suite *SessionStoreTestSuite) TestExpireSessionsBefore() {
	_, err := suite.repo.CreateSession(suite.ctx, "user-1", suite.now.Add(-time.Hour))
	require.NoError(suite.T(), err)
	_, err = suite.repo.CreateSession(suite.ctx, "user-2", suite.now.Add(-time.Hour))
	require.NoError(suite.T(), err)
	_, err = suite.repo.CreateSession(suite.ctx, "user-3", suite.now)
	require.NoError(suite.T(), err)

	n, err := suite.repo.ExpireSessionsBefore(suite.ctx, suite.now.Add(-10*time.Minute))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, n)

	s, err := suite.repo.ActiveSession(suite.ctx, "user-3")
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), s)

	n, err = suite.repo.ExpireSessionsBefore(suite.ctx, suite.now.Add(-10*time.Minute))
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), n)
}

func TestSessionStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreTestSuite))
}

func TestUserAndPasswordMirror(t *testing.T) {
	repo, err := NewRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	u := User{ID: "user-1", Email: "ana@example.com", PasswordHash: "$2a$10$hash"}
	require.NoError(t, repo.CreateUser(ctx, u))

	got, err := repo.UserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.ID)

	missing, err := repo.UserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.UpsertPasswordMirror(ctx, "user-1", "ana@example.com", "senha123"))
	require.NoError(t, repo.UpsertPasswordMirror(ctx, "user-1", "ana@example.com", "senha456"))

	require.NoError(t, repo.UpdatePasswordHash(ctx, "user-1", "$2a$10$newhash"))
	got, err = repo.UserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newhash", got.PasswordHash)
}
