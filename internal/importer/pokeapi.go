// Package importer populates the catalog from PokeAPI.
package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ayush/pokedex/internal/models"
)

const noDescription = "No description available."

// checkResp returns an error carrying the upstream body when the status
// is not 2xx.
func checkResp(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("pokeapi %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
}

// Client calls the PokeAPI v2 REST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// FetchPokemon loads /pokemon/{id} and its species flavor text.
func (c *Client) FetchPokemon(ctx context.Context, id int64) (*models.Pokemon, error) {
	path := fmt.Sprintf("/pokemon/%d", id)
	body, err := c.get(ctx, c.baseURL+path, path)
	if err != nil {
		return nil, err
	}
	p, err := parsePokemon(body)
	if err != nil {
		return nil, fmt.Errorf("pokeapi %s: %w", path, err)
	}

	speciesURL := gjson.GetBytes(body, "species.url").String()
	if speciesURL == "" {
		speciesURL = fmt.Sprintf("%s/pokemon-species/%d", c.baseURL, id)
	}
	species, err := c.get(ctx, speciesURL, "/pokemon-species")
	if err != nil {
		return nil, err
	}
	desc := flavorText(species)
	p.Description = &desc
	return p, nil
}

// FetchSprite downloads an image and returns its bytes and content type.
func (c *Client) FetchSprite(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("sprite %s: %w", url, err)
	}
	defer resp.Body.Close()
	if err := checkResp(resp, "sprite"); err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, "", fmt.Errorf("sprite %s: read: %w", url, err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}

func (c *Client) get(ctx context.Context, url, label string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pokeapi %s: %w", label, err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, label); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pokeapi %s: read: %w", label, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("pokeapi %s: invalid json", label)
	}
	return body, nil
}

var statFields = map[string]func(*models.Pokemon) **int32{
	"hp":              func(p *models.Pokemon) **int32 { return &p.HP },
	"attack":          func(p *models.Pokemon) **int32 { return &p.Attack },
	"defense":         func(p *models.Pokemon) **int32 { return &p.Defense },
	"special-attack":  func(p *models.Pokemon) **int32 { return &p.SpAttack },
	"special-defense": func(p *models.Pokemon) **int32 { return &p.SpDefense },
	"speed":           func(p *models.Pokemon) **int32 { return &p.Speed },
}

// parsePokemon maps a /pokemon payload onto a catalog entry. Missing stats
// stay nil; a missing id or name is an error.
func parsePokemon(body []byte) (*models.Pokemon, error) {
	doc := gjson.ParseBytes(body)
	id, name := doc.Get("id"), doc.Get("name")
	if id.Type != gjson.Number || name.String() == "" {
		return nil, fmt.Errorf("missing id or name")
	}

	p := &models.Pokemon{ID: id.Int(), Name: name.String(), Type1: "unknown"}

	types := doc.Get("types.#.type.name").Array()
	if len(types) > 0 {
		p.Type1 = types[0].String()
	}
	if len(types) > 1 {
		t2 := types[1].String()
		p.Type2 = &t2
	}

	doc.Get("stats").ForEach(func(_, stat gjson.Result) bool {
		field, ok := statFields[stat.Get("stat.name").String()]
		if !ok {
			return true
		}
		if v := stat.Get("base_stat"); v.Type == gjson.Number {
			*field(p) = int32Ptr(v.Int())
		}
		return true
	})

	if v := doc.Get("height"); v.Type == gjson.Number {
		p.Height = int32Ptr(v.Int())
	}
	if v := doc.Get("weight"); v.Type == gjson.Number {
		p.Weight = int32Ptr(v.Int())
	}
	if v := doc.Get("sprites.front_default"); v.Type == gjson.String && v.String() != "" {
		s := v.String()
		p.SpriteURL = &s
	}
	return p, nil
}

// flavorText returns the first English entry with line breaks flattened.
func flavorText(species []byte) string {
	v := gjson.GetBytes(species, `flavor_text_entries.#(language.name=="en").flavor_text`)
	if !v.Exists() {
		return noDescription
	}
	return strings.NewReplacer("\n", " ", "\f", " ").Replace(v.String())
}

func int32Ptr(v int64) *int32 {
	n := int32(v)
	return &n
}
