package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bulbasaurJSON = `{
  "id": 1,
  "name": "bulbasaur",
  "height": 7,
  "weight": 69,
  "species": {"url": "%s/pokemon-species/1/"},
  "sprites": {"front_default": "%s/sprites/1.png"},
  "types": [
    {"slot": 1, "type": {"name": "grass"}},
    {"slot": 2, "type": {"name": "poison"}}
  ],
  "stats": [
    {"base_stat": 45, "stat": {"name": "hp"}},
    {"base_stat": 49, "stat": {"name": "attack"}},
    {"base_stat": 49, "stat": {"name": "defense"}},
    {"base_stat": 65, "stat": {"name": "special-attack"}},
    {"base_stat": 65, "stat": {"name": "special-defense"}},
    {"base_stat": 45, "stat": {"name": "speed"}}
  ]
}`

const bulbasaurSpecies = `{
  "flavor_text_entries": [
    {"flavor_text": "Une graine étrange.", "language": {"name": "fr"}},
    {"flavor_text": "A strange seed was\nplanted on its\fback at birth.", "language": {"name": "en"}},
    {"flavor_text": "Second english entry.", "language": {"name": "en"}}
  ]
}`

func newPokeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/pokemon/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, bulbasaurJSON, srv.URL, srv.URL)
	})
	mux.HandleFunc("/pokemon-species/1/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bulbasaurSpecies))
	})
	mux.HandleFunc("/pokemon/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 2, "name": "ivysaur", "types": [], "stats": [], "sprites": null}`))
	})
	mux.HandleFunc("/pokemon-species/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"flavor_text_entries": []}`))
	})
	mux.HandleFunc("/pokemon/3", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	mux.HandleFunc("/sprites/1.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPokemon_FullPayload(t *testing.T) {
	srv := newPokeAPI(t)
	c := NewClient(srv.URL + "/")

	p, err := c.FetchPokemon(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "bulbasaur", p.Name)
	assert.Equal(t, "grass", p.Type1)
	require.NotNil(t, p.Type2)
	assert.Equal(t, "poison", *p.Type2)
	require.NotNil(t, p.SpAttack)
	assert.Equal(t, int32(65), *p.SpAttack)
	assert.Equal(t, int32(45), *p.HP)
	assert.Equal(t, int32(7), *p.Height)
	assert.Equal(t, int32(69), *p.Weight)
	assert.Equal(t, srv.URL+"/sprites/1.png", *p.SpriteURL)
	assert.Equal(t, "A strange seed was planted on its back at birth.", *p.Description)
}

func TestFetchPokemon_SparsePayload(t *testing.T) {
	c := NewClient(newPokeAPI(t).URL)

	p, err := c.FetchPokemon(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "unknown", p.Type1)
	assert.Nil(t, p.Type2)
	assert.Nil(t, p.HP)
	assert.Nil(t, p.Height)
	assert.Nil(t, p.SpriteURL)
	assert.Equal(t, noDescription, *p.Description)
}

func TestFetchPokemon_UpstreamError(t *testing.T) {
	c := NewClient(newPokeAPI(t).URL)

	_, err := c.FetchPokemon(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestFetchSprite(t *testing.T) {
	srv := newPokeAPI(t)
	c := NewClient(srv.URL)

	data, ct, err := c.FetchSprite(context.Background(), srv.URL+"/sprites/1.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte("\x89PNG"), data)

	_, _, err = c.FetchSprite(context.Background(), srv.URL+"/sprites/404.png")
	assert.Error(t, err)
}

func TestParsePokemon_RequiresIdentity(t *testing.T) {
	_, err := parsePokemon([]byte(`{"name": "nobody"}`))
	assert.Error(t, err)
}
