package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/ecohistorias/eco-api/internal/dto"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSussurroTest(t *testing.T) (*testEnv, *models.Eco) {
	t.Helper()
	env := setupTestEnv(t)
	author := testutil.CreateUser(t, env.db, "Autor")
	tag := testutil.CreateTag(t, env.db, "Amor")
	return env, testutil.CreateEco(t, env.db, author.ID, "historia", tag.ID)
}

func TestSussurroHandler_Create(t *testing.T) {
	env, eco := setupSussurroTest(t)
	replier := testutil.CreateUser(t, env.db, "Ouvinte")
	token := env.tokenFor(t, replier.ID)

	w := env.request(t, http.MethodPost, "/sussurro", map[string]string{"eco_id": eco.ID, "conteudo": "estou aqui"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created dto.SussurroDTO
	decode(t, w, &created)
	assert.Equal(t, "estou aqui", created.Content)

	w = env.request(t, http.MethodPost, "/sussurro", map[string]string{"eco_id": eco.ID, "conteudo": "de novo"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.request(t, http.MethodPost, "/sussurro", map[string]string{"eco_id": eco.ID, "conteudo": "oi"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSussurroHandler_CreateValidation(t *testing.T) {
	env, eco := setupSussurroTest(t)
	token := env.tokenFor(t, testutil.CreateUser(t, env.db, "Ouvinte").ID)

	w := env.request(t, http.MethodPost, "/sussurro", map[string]string{"eco_id": eco.ID, "conteudo": strings.Repeat("x", 145)}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "conteudo")

	w = env.request(t, http.MethodPost, "/sussurro", map[string]string{"conteudo": "oi"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"eco_id"`)

	w = env.request(t, http.MethodPost, "/sussurro", map[string]string{
		"eco_id":   "00000000-0000-0000-0000-000000000000",
		"conteudo": "oi",
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSussurroHandler_Limit(t *testing.T) {
	env, eco := setupSussurroTest(t)

	for i := 0; i < 5; i++ {
		token := env.tokenFor(t, testutil.CreateUser(t, env.db, fmt.Sprintf("Ouvinte%d", i)).ID)
		w := env.request(t, http.MethodPost, "/sussurro", map[string]string{"eco_id": eco.ID, "conteudo": "oi"}, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	token := env.tokenFor(t, testutil.CreateUser(t, env.db, "Atrasado").ID)
	w := env.request(t, http.MethodPost, "/sussurro", map[string]string{"eco_id": eco.ID, "conteudo": "oi"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "sussurro limit reached")
}

// Requests are serialized by the single test connection; only the status
// mapping is checked here.
func TestSussurroHandler_ParallelDuplicate(t *testing.T) {
	env, eco := setupSussurroTest(t)
	token := env.tokenFor(t, testutil.CreateUser(t, env.db, "Ouvinte").ID)

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = env.request(t, http.MethodPost, "/sussurro", map[string]string{"eco_id": eco.ID, "conteudo": "oi"}, token).Code
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusConflict}, codes)
}

func TestSussurroHandler_ListUpdateDelete(t *testing.T) {
	env, eco := setupSussurroTest(t)
	replier := testutil.CreateUser(t, env.db, "Ouvinte")
	stranger := testutil.CreateUser(t, env.db, "Estranho")
	sussurro := testutil.CreateSussurro(t, env.db, eco.ID, replier.ID, "antes")

	w := env.request(t, http.MethodGet, "/sussurro?eco_id="+eco.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.SussurroListResponse
	decode(t, w, &list)
	require.Len(t, list.Sussurros, 1)
	assert.Equal(t, "Ouvinte", list.Sussurros[0].Author.Codename)
	assert.Nil(t, list.Pagination)

	w = env.request(t, http.MethodGet, "/sussurro", nil, "")
	decode(t, w, &list)
	require.NotNil(t, list.Pagination)
	assert.Equal(t, int64(1), list.Pagination.Total)

	path := "/sussurro/" + sussurro.ID
	w = env.request(t, http.MethodPatch, path, map[string]string{"conteudo": "roubado"}, env.tokenFor(t, stranger.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPatch, path, map[string]string{"conteudo": "depois"}, env.tokenFor(t, replier.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "depois")

	w = env.request(t, http.MethodDelete, path, nil, env.tokenFor(t, stranger.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodDelete, path, nil, env.tokenFor(t, replier.ID))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodDelete, path, nil, env.tokenFor(t, replier.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
