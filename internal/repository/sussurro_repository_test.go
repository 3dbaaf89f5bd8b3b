package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	mysqldriver "github.com/go-sql-driver/mysql"
)

func TestSussurroRepository_CreateLimited(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSussurroRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	eco := testutil.CreateEco(t, db, author.ID, "conte comigo")

	first := &models.Sussurro{EcoID: eco.ID, AuthorID: author.ID, Content: "um"}
	require.NoError(t, repo.CreateLimited(ctx, first, 2))

	again := &models.Sussurro{EcoID: eco.ID, AuthorID: author.ID, Content: "dois"}
	assert.ErrorIs(t, repo.CreateLimited(ctx, again, 2), ErrSussurroExists)

	other := testutil.CreateUser(t, db, "Outro")
	require.NoError(t, repo.CreateLimited(ctx, &models.Sussurro{EcoID: eco.ID, AuthorID: other.ID, Content: "tres"}, 2))

	late := testutil.CreateUser(t, db, "Atrasado")
	err := repo.CreateLimited(ctx, &models.Sussurro{EcoID: eco.ID, AuthorID: late.ID, Content: "quatro"}, 2)
	assert.ErrorIs(t, err, ErrSussurroLimit)
}

// SQLite runs these one at a time, so the second call is stopped by the
// pre-insert check. The locking and unique-index paths are exercised against
// the MySQL dialector below.
func TestSussurroRepository_ParallelDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSussurroRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	eco := testutil.CreateEco(t, db, author.ID, "corrida")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateLimited(ctx, &models.Sussurro{
				EcoID:    eco.ID,
				AuthorID: author.ID,
				Content:  fmt.Sprintf("tentativa %d", i),
			}, 5)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSussurroExists)
	}
	assert.Equal(t, 1, succeeded)
}

const (
	lockEcoQuery   = "SELECT `id` FROM `ecos` WHERE id = \\? ORDER BY .+ FOR UPDATE"
	countOwnQuery  = "SELECT count\\(\\*\\) FROM `sussurros` WHERE eco_id = \\? AND author_id = \\?"
	countEcoQuery  = "SELECT count\\(\\*\\) FROM `sussurros` WHERE eco_id = \\?"
	insertSussurro = "INSERT INTO `sussurros`"
)

func expectLockedCounts(mock sqlmock.Sqlmock, own, total int) {
	mock.ExpectBegin()
	mock.ExpectQuery(lockEcoQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("eco-1"))
	mock.ExpectQuery(countOwnQuery).
		WithArgs("eco-1", "author-1").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(own))
	if own > 0 {
		return
	}
	mock.ExpectQuery(countEcoQuery).
		WithArgs("eco-1").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(total))
}

func TestSussurroRepository_CreateLimited_LocksEcoBeforeCounting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSussurroRepository(db)

	expectLockedCounts(mock, 0, 4)
	mock.ExpectExec(insertSussurro).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sussurro := &models.Sussurro{EcoID: "eco-1", AuthorID: "author-1", Content: "oi"}
	require.NoError(t, repo.CreateLimited(context.Background(), sussurro, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSussurroRepository_CreateLimited_LimitUnderLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSussurroRepository(db)

	expectLockedCounts(mock, 0, 5)
	mock.ExpectRollback()

	sussurro := &models.Sussurro{EcoID: "eco-1", AuthorID: "author-1", Content: "oi"}
	assert.ErrorIs(t, repo.CreateLimited(context.Background(), sussurro, 5), ErrSussurroLimit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSussurroRepository_CreateLimited_DuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSussurroRepository(db)

	// Another request by the same author committed after our counts.
	expectLockedCounts(mock, 0, 1)
	mock.ExpectExec(insertSussurro).WillReturnError(&mysqldriver.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'eco-1-author-1' for key 'idx_sussurros_eco_author'",
	})
	mock.ExpectRollback()

	sussurro := &models.Sussurro{EcoID: "eco-1", AuthorID: "author-1", Content: "oi"}
	assert.ErrorIs(t, repo.CreateLimited(context.Background(), sussurro, 5), ErrSussurroExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSussurroRepository_CreateLimited_EcoGone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSussurroRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockEcoQuery).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	sussurro := &models.Sussurro{EcoID: "eco-1", AuthorID: "author-1", Content: "oi"}
	assert.ErrorIs(t, repo.CreateLimited(context.Background(), sussurro, 5), gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSussurroRepository_List(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSussurroRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	reader := testutil.CreateUser(t, db, "Leitor")
	eco := testutil.CreateEco(t, db, author.ID, "um")
	otherEco := testutil.CreateEco(t, db, author.ID, "dois")
	testutil.CreateSussurro(t, db, eco.ID, reader.ID, "primeiro")
	testutil.CreateSussurro(t, db, eco.ID, author.ID, "segundo")
	testutil.CreateSussurro(t, db, otherEco.ID, reader.ID, "outro")

	rows, total, err := repo.List(ctx, SussurroFilter{EcoID: eco.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "primeiro", rows[0].Content)
	assert.Equal(t, "Leitor", rows[0].Codename)
	assert.Equal(t, reader.AvatarURL, rows[0].AvatarURL)

	rows, total, err = repo.List(ctx, SussurroFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rows, 2)
}

func TestSussurroRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSussurroRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	eco := testutil.CreateEco(t, db, author.ID, "um")
	sussurro := testutil.CreateSussurro(t, db, eco.ID, author.ID, "antes")

	require.NoError(t, repo.UpdateContent(ctx, sussurro.ID, "depois"))
	found, err := repo.FindByID(ctx, sussurro.ID)
	require.NoError(t, err)
	assert.Equal(t, "depois", found.Content)

	require.NoError(t, repo.Delete(ctx, sussurro.ID))
	_, err = repo.FindByID(ctx, sussurro.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, sussurro.ID), gorm.ErrRecordNotFound)
}
