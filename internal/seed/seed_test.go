package seed

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/angelodel80/cadmus-api/internal/identity"
	"github.com/angelodel80/cadmus-api/internal/item/service"
	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/internal/part"
)

func TestNumberToWords(t *testing.T) {
	cases := map[int]string{
		0:    "zero",
		7:    "seven",
		13:   "thirteen",
		20:   "twenty",
		21:   "twenty-one",
		100:  "one hundred",
		305:  "three hundred five",
		1999: "one thousand nine hundred ninety-nine",
		-4:   "minus four",
	}
	for n, want := range cases {
		assert.Equal(t, want, NumberToWords(n), n)
	}
}

func TestLorem(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	text := Lorem(r, 13, 6)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Len(t, strings.Fields(text), 13)
	assert.True(t, strings.HasSuffix(text, "."))
	assert.Equal(t, strings.ToUpper(text[:1]), text[:1])

	assert.Empty(t, Lorem(r, 0, 6))
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewSeededGenerator(42, nil)
	b := NewSeededGenerator(42, nil)
	for n := 1; n <= 12; n++ {
		da, err := a.Parts("item", n)
		require.NoError(t, err)
		db, err := b.Parts("item", n)
		require.NoError(t, err)
		require.Equal(t, da, db, n)
	}
}

func TestGenerator_IDsFollowSeed(t *testing.T) {
	a := NewSeededGenerator(42, nil)
	b := NewSeededGenerator(42, nil)
	seen := map[string]bool{}
	for n := 1; n <= 8; n++ {
		ra, rb := a.Item(n, "default"), b.Item(n, "default")
		require.Equal(t, ra.ID, rb.ID)
		require.True(t, identity.IsCanonical(ra.ID), ra.ID)
		require.False(t, seen[ra.ID])
		seen[ra.ID] = true

		docs, err := a.Parts(ra.ID, n)
		require.NoError(t, err)
		_, err = b.Parts(rb.ID, n)
		require.NoError(t, err)
		for _, doc := range docs {
			id := gjson.Get(doc, "id").String()
			require.True(t, identity.IsCanonical(id), id)
			require.False(t, seen[id])
			seen[id] = true
		}
	}
	require.NotEqual(t, NewSeededGenerator(1, nil).Item(1, "default").ID, NewSeededGenerator(2, nil).Item(1, "default").ID)
}

func TestGenerator_PartsByIndex(t *testing.T) {
	g := NewSeededGenerator(7, nil)
	reg := part.DefaultRegistry()

	for n := 1; n <= 40; n++ {
		docs, err := g.Parts("item", n)
		require.NoError(t, err)

		types := map[string]int{}
		for _, doc := range docs {
			types[gjson.Get(doc, "typeId").String()]++
			assert.Equal(t, Owner(n), gjson.Get(doc, "userId").String())
			_, err := reg.ExtractPins(doc)
			require.NoError(t, err, doc)
		}
		assert.Equal(t, 1, types[part.TypeCategories])
		switch n % 4 {
		case 0:
			assert.Zero(t, types[part.TypeKeywords])
		case 1:
			assert.Equal(t, 1, types[part.TypeKeywords])
			assert.Zero(t, types[part.TypeNote])
		case 2:
			assert.Equal(t, 1, types[part.TypeNote])
			assert.Zero(t, types[part.TypeTokenText])
		case 3:
			assert.Equal(t, 1, types[part.TypeTokenText])
			assert.GreaterOrEqual(t, types[part.TypeTokenTextLayer], 1)
		}
	}
}

func TestGenerator_Item(t *testing.T) {
	rec := NewSeededGenerator(1, nil).Item(21, "facet")
	assert.Equal(t, "Item #21", rec.Title)
	assert.Equal(t, "Description for odd item number twenty-one.", rec.Description)
	assert.Equal(t, "item-00021", rec.SortKey)
	assert.Equal(t, 1, rec.Flags)
	assert.Equal(t, "facet", rec.FacetID)
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - alpha\n  - beta\n"), 0o600))

	cats, err := LoadCategories(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, cats)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("other: 1\n"), 0o600))
	_, err = LoadCategories(empty)
	require.Error(t, err)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	svc := service.NewMemoryService()

	st, err := NewSeeder(svc, NewSeededGenerator(3, nil)).Run(ctx, "cadmus", 8, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 8, st.Items)
	assert.Greater(t, st.Parts, 8)

	page, err := svc.GetItems(ctx, "cadmus", &models.ItemFilter{PageNumber: 1, PageSize: 20})
	require.NoError(t, err)
	require.EqualValues(t, 8, page.Total)

	third := page.Items[2]
	assert.Equal(t, "item-00003", third.SortKey)
	assert.Equal(t, "a", third.FacetID)
	assert.Equal(t, "odd", third.UserID)

	layers, err := svc.GetItemLayers(ctx, "cadmus", third.ID)
	require.NoError(t, err)
	roles := make([]string, 0, len(layers))
	for _, l := range layers {
		roles = append(roles, l.RoleID)
	}
	assert.Contains(t, roles, part.RoleComment)
}

func TestSeeder_SameSeedSameIDs(t *testing.T) {
	ctx := context.Background()
	ids := func() []string {
		svc := service.NewMemoryService()
		_, err := NewSeeder(svc, NewSeededGenerator(5, nil)).Run(ctx, "cadmus", 4, nil)
		require.NoError(t, err)
		page, err := svc.GetItems(ctx, "cadmus", &models.ItemFilter{PageNumber: 1, PageSize: 20})
		require.NoError(t, err)
		var out []string
		for _, it := range page.Items {
			out = append(out, it.ID)
			item, err := svc.GetItem(ctx, "cadmus", it.ID, true)
			require.NoError(t, err)
			for _, p := range item.Parts {
				out = append(out, gjson.GetBytes(p, "id").String())
			}
		}
		return out
	}
	first := ids()
	require.Greater(t, len(first), 4)
	require.Equal(t, first, ids())
}

func TestSeeder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSeeder(service.NewMemoryService(), NewSeededGenerator(1, nil)).Run(ctx, "cadmus", 3, nil)
	require.ErrorIs(t, err, context.Canceled)
}
