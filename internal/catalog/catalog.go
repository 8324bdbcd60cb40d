package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/gamms/storefront/internal/domain"
)

// Catalog holds the product list. It is read-only after load.
type Catalog struct {
	products []domain.Product
}

// defaultProducts mirrors the shipped products.json so the storefront still
// renders when the data source is missing or broken.
var defaultProducts = []domain.Product{
	{ID: 1, Name: "Muñequitos tejidos", Price: 25.0, Description: "Muñequitos tejidos a mano, ideales para regalo.", Category: "Regalos", Images: []string{"img/regalos_munequitos-tejidos_abeja.jpg"}},
	{ID: 2, Name: "Chalinas tejidas", Price: 35.0, Description: "Chalinas tejidas abrigadoras y suaves.", Category: "Ropa", Images: []string{"img/ropa_chalina-tejida_gris.jpeg"}},
	{ID: 3, Name: "Rosas eternas", Price: 18.0, Description: "Rosas tejidas que no se marchitan.", Category: "Decoración", Images: []string{"img/decoracion_rosas-eternas_blancasyrojas.jpg"}},
	{ID: 4, Name: "Velas aromáticas", Price: 15.0, Description: "Velas decorativas con agradables aromas.", Category: "Hogar", Images: []string{"img/hogar__velas-aromaticas_rosa.jpg"}},
	{ID: 5, Name: "Gorros tejidos", Price: 28.0, Description: "Gorros tejidos a mano para el frío.", Category: "Ropa", Images: []string{"img/ropa_gorros-tejidos_blancoyrosa.jpg"}},
	{ID: 6, Name: "Calentadores tejidos", Price: 22.0, Description: "Calentadores para manos o piernas.", Category: "Ropa", Images: []string{"img/ropa_calentador_tejido.jpg"}},
	{ID: 7, Name: "Accesorios para perros tejidos", Price: 20.0, Description: "Collares, pañuelos y más para mascotas.", Category: "Mascotas", Images: []string{"img/ropa_gorra_rosa.jpg"}},
	{ID: 8, Name: "Flores de hilo", Price: 18.0, Description: "Flores decorativas hechas con hilo.", Category: "Decoración", Images: []string{"img/decoracion_flores-hilo_amarillas.jpg"}},
}

// Load decodes a product list from r.
func Load(r io.Reader) (*Catalog, error) {
	var products []domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return &Catalog{products: products}, nil
}

// Default returns the built-in fallback catalog.
func Default() *Catalog {
	return &Catalog{products: defaultProducts}
}

// LoadFile reads products from path, falling back to the built-in list when
// the file is missing or malformed. Catalog problems never stop the site
// from coming up.
func LoadFile(path string, log logrus.FieldLogger) *Catalog {
	if log == nil {
		log = logrus.StandardLogger()
	}

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Warn("catalog: failed to open products file, using fallback")
		}
		return Default()
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		log.WithError(err).Warn("catalog: failed to decode products file, using fallback")
		return Default()
	}
	return c
}

func (c *Catalog) Products() []domain.Product {
	return c.products
}

// Find looks a product up by id. Ids are compared as strings, matching how
// they travel through cart lines.
func (c *Catalog) Find(id string) (domain.Product, bool) {
	for _, p := range c.products {
		if strconv.FormatInt(p.ID, 10) == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// CategoryGroup is one catalog section, products in insertion order.
type CategoryGroup struct {
	Category string
	Products []domain.Product
}

// Grouped partitions the catalog by category. "Ropa" is listed first when
// present; the rest keep their first-seen order.
func (c *Catalog) Grouped() []CategoryGroup {
	byCategory := map[string][]domain.Product{}
	var order []string
	for _, p := range c.products {
		cat := p.Category
		if cat == "" {
			cat = "Sin categoría"
		}
		if _, ok := byCategory[cat]; !ok {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], p)
	}

	var ordered []string
	for _, preferred := range []string{"Ropa"} {
		if _, ok := byCategory[preferred]; ok {
			ordered = append(ordered, preferred)
		}
	}
	for _, cat := range order {
		if cat != "Ropa" {
			ordered = append(ordered, cat)
		}
	}

	groups := make([]CategoryGroup, 0, len(ordered))
	for _, cat := range ordered {
		groups = append(groups, CategoryGroup{Category: cat, Products: byCategory[cat]})
	}
	return groups
}
