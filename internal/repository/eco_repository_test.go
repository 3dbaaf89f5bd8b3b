package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return db, mock
}

func TestEcoRepository_CreateWithTags(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEcoRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	a := testutil.CreateTag(t, db, "Amor")
	b := testutil.CreateTag(t, db, "Luto")

	eco := &models.Eco{AuthorID: author.ID, Thread1: "primeira linha"}
	require.NoError(t, repo.CreateWithTags(ctx, eco, []string{a.ID, b.ID}))
	require.NotEmpty(t, eco.ID)

	ids, err := repo.TagIDs(ctx, eco.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)
}

func TestEcoRepository_CreateWithTags_RollsBackOnLinkFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEcoRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ecos`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `eco_tags`").WillReturnError(errors.New("foreign key constraint fails"))
	mock.ExpectRollback()

	eco := &models.Eco{AuthorID: "author-1", Thread1: "oi"}
	err := repo.CreateWithTags(context.Background(), eco, []string{"tag-1", "tag-2"})

	require.ErrorIs(t, err, ErrCreateEcoTags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEcoRepository_CreateWithTags_Commits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEcoRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ecos`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `eco_tags`").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	eco := &models.Eco{AuthorID: "author-1", Thread1: "oi"}
	require.NoError(t, repo.CreateWithTags(context.Background(), eco, []string{"tag-1", "tag-2"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEcoRepository_Delete_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEcoRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `sussurros`").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `eco_tags`").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "eco-1")

	require.ErrorIs(t, err, ErrDeleteEco)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEcoRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEcoRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	reader := testutil.CreateUser(t, db, "Leitor")
	a := testutil.CreateTag(t, db, "Amor")
	b := testutil.CreateTag(t, db, "Luto")
	eco := testutil.CreateEco(t, db, author.ID, "adeus", a.ID, b.ID)
	testutil.CreateSussurro(t, db, eco.ID, author.ID, "eu mesma")
	testutil.CreateSussurro(t, db, eco.ID, reader.ID, "forca")

	require.NoError(t, repo.Delete(ctx, eco.ID))

	var links, sussurros, ecos int64
	db.Model(&models.EcoTag{}).Where("eco_id = ?", eco.ID).Count(&links)
	db.Model(&models.Sussurro{}).Where("eco_id = ?", eco.ID).Count(&sussurros)
	db.Model(&models.Eco{}).Where("id = ?", eco.ID).Count(&ecos)
	assert.Zero(t, links)
	assert.Zero(t, sussurros)
	assert.Zero(t, ecos)

	assert.ErrorIs(t, repo.Delete(ctx, eco.ID), gorm.ErrRecordNotFound)
}

func TestEcoRepository_Feed(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEcoRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	reader := testutil.CreateUser(t, db, "Leitor")
	amor := testutil.CreateTag(t, db, "Amor")
	luto := testutil.CreateTag(t, db, "Luto")

	first := testutil.CreateEco(t, db, author.ID, "primeiro", amor.ID)
	second := testutil.CreateEco(t, db, author.ID, "segundo", amor.ID, luto.ID)
	testutil.CreateSussurro(t, db, first.ID, reader.ID, "oi")

	rows, total, err := repo.Feed(ctx, FeedFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)

	byID := map[string]EcoRow{}
	for _, row := range rows {
		byID[row.ID] = row
	}
	assert.Equal(t, int64(1), byID[first.ID].SussurroCount)
	assert.Equal(t, int64(0), byID[second.ID].SussurroCount)
	assert.Equal(t, "Autora", byID[first.ID].Codename)
	assert.Equal(t, author.AvatarURL, byID[first.ID].AvatarURL)
	assert.Equal(t, models.GenderOther, byID[first.ID].Gender)

	rows, total, err = repo.Feed(ctx, FeedFilter{TagID: luto.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].ID)

	rows, total, err = repo.Feed(ctx, FeedFilter{TagID: "missing", Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}

func TestEcoRepository_FindRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEcoRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	tag := testutil.CreateTag(t, db, "Amor")
	eco := testutil.CreateEco(t, db, author.ID, "sozinho", tag.ID)

	row, err := repo.FindRow(ctx, eco.ID)
	require.NoError(t, err)
	assert.Equal(t, "sozinho", row.Thread1)
	assert.Nil(t, row.Thread2)

	_, err = repo.FindRow(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEcoRepository_UpdateThreads(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEcoRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Autora")
	eco := testutil.CreateEco(t, db, author.ID, "antes")

	thread1, thread2 := "depois", "continua"
	require.NoError(t, repo.UpdateThreads(ctx, eco.ID, ThreadUpdate{Thread1: &thread1, Thread2: &thread2}))

	updated, err := repo.FindByID(ctx, eco.ID)
	require.NoError(t, err)
	assert.Equal(t, "depois", updated.Thread1)
	require.NotNil(t, updated.Thread2)
	assert.Equal(t, "continua", *updated.Thread2)

	empty := ""
	require.NoError(t, repo.UpdateThreads(ctx, eco.ID, ThreadUpdate{Thread2: &empty}))
	updated, err = repo.FindByID(ctx, eco.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Thread2)
	assert.Equal(t, "depois", updated.Thread1)
}

func TestFeedQuery(t *testing.T) {
	query, args, err := FeedQuery(FeedFilter{TagID: "tag-1", Limit: 20, Offset: 40})
	require.NoError(t, err)

	assert.Contains(t, query, "JOIN users ON users.id = ecos.author_id")
	assert.Contains(t, query, "JOIN eco_tags ON eco_tags.eco_id = ecos.id")
	assert.Contains(t, query, "eco_tags.tag_id = ?")
	assert.Contains(t, query, "AS sussurro_count")
	assert.Contains(t, query, "ORDER BY ecos.created_at DESC")
	assert.Contains(t, query, "LIMIT 20 OFFSET 40")
	assert.NotContains(t, query, "email")
	assert.NotContains(t, query, "password_hash")
	assert.Equal(t, []interface{}{"tag-1"}, args)
}
