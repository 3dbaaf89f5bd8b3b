package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/ecohistorias/eco-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewTagService(repository.NewTagRepository(db))
	ctx := context.Background()

	tag, err := service.CreateTag(ctx, "  Sonhos ")
	require.NoError(t, err)
	assert.Equal(t, "Sonhos", tag.Name)

	_, err = service.CreateTag(ctx, "Sonhos")
	assert.ErrorIs(t, err, ErrTagExists)

	_, err = service.CreateTag(ctx, strings.Repeat("a", 41))
	var fe *FieldError
	assert.ErrorAs(t, err, &fe)

	created, err := service.SeedTags(ctx, []string{"Amor", "Sonhos", "Luto"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = service.SeedTags(ctx, []string{"Amor", "Sonhos", "Luto"})
	require.NoError(t, err)
	assert.Zero(t, created)

	tags, err := service.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "Amor", tags[0].Name)
	assert.Equal(t, "Sonhos", tags[2].Name)
}
