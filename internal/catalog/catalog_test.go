package catalog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamms/storefront/internal/domain"
)

func TestLoad_FromJSON(t *testing.T) {
	data := `[{"id":1,"name":"Chalinas","price":35,"category":"Ropa","images":["img/a.jpg"]}]`

	c, err := Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, c.Products(), 1)
	assert.Equal(t, "Chalinas", c.Products()[0].Name)
	assert.Equal(t, "img/a.jpg", c.Products()[0].MainImage())
}

func TestLoad_BadJSON(t *testing.T) {
	_, err := Load(strings.NewReader("{nope"))
	assert.Error(t, err)
}

func TestLoadFile_MissingFallsBack(t *testing.T) {
	c := LoadFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Len(t, c.Products(), 8)
}

func TestDefault_Products(t *testing.T) {
	c := Default()
	require.Len(t, c.Products(), 8)
	assert.Equal(t, "Muñequitos tejidos", c.Products()[0].Name)
	assert.Equal(t, 25.0, c.Products()[0].Price)
}

func TestFind_ByStringID(t *testing.T) {
	c := Default()

	p, ok := c.Find("2")
	require.True(t, ok)
	assert.Equal(t, "Chalinas tejidas", p.Name)

	_, ok = c.Find("999")
	assert.False(t, ok)
}

func TestGrouped_RopaFirst(t *testing.T) {
	groups := Default().Grouped()
	require.NotEmpty(t, groups)
	assert.Equal(t, "Ropa", groups[0].Category)

	// every product lands in exactly one group
	total := 0
	for _, g := range groups {
		total += len(g.Products)
	}
	assert.Equal(t, 8, total)
}

func TestGrouped_UncategorizedBucket(t *testing.T) {
	c := &Catalog{products: []domain.Product{{ID: 1, Name: "Misc"}}}
	groups := c.Grouped()
	require.Len(t, groups, 1)
	assert.Equal(t, "Sin categoría", groups[0].Category)
}
