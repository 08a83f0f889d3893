package assets

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/skinsight/engine/internal/domain/model"
)

// loadCatalog loads the product catalog YAML. An empty path or a missing
// file yields the built-in default; a file that exists but fails to parse
// or validate is an error.
func loadCatalog(path string) (catalog []model.Product, usedDefault bool, err error) {
	if path == "" {
		return defaultCatalog(), true, nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return defaultCatalog(), true, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, false, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	var products []model.Product
	if err := k.Unmarshal("products", &products); err != nil {
		return nil, false, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	if err := validateCatalog(products); err != nil {
		return nil, false, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return products, false, nil
}

func validateCatalog(products []model.Product) error {
	if len(products) == 0 {
		return fmt.Errorf("no products defined")
	}
	seen := make(map[string]bool, len(products))
	for i, p := range products {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("product %d is missing id or name", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Category == "" {
			return fmt.Errorf("product %q has no category", p.ID)
		}
	}
	return nil
}

// defaultCatalog is the built-in product set used when no catalog file is
// configured. It covers every condition and category so the engine always
// has enough breadth to fill a routine.
func defaultCatalog() []model.Product {
	return []model.Product{
		{ID: "default-cleanser-gel", Name: "Purifying Gel Cleanser", Category: model.CategoryCleanser,
			Tags: []string{"acne", "pores"}, Ingredients: []string{"salicylic acid"}, Price: 14, BaseWeight: 10},
		{ID: "default-cleanser-cream", Name: "Calming Cream Cleanser", Category: model.CategoryCleanser,
			Tags: []string{"redness"}, Ingredients: []string{"centella"}, Price: 15, BaseWeight: 9},
		{ID: "default-treatment-spot", Name: "Rapid Spot Treatment", Category: model.CategoryTreatment,
			Tags: []string{"acne"}, Ingredients: []string{"benzoyl peroxide"}, Price: 18, BaseWeight: 12},
		{ID: "default-treatment-azelaic", Name: "Azelaic Acid 10%", Category: model.CategoryTreatment,
			Tags: []string{"redness", "pigmentation"}, Ingredients: []string{"azelaic acid"}, Price: 26, BaseWeight: 11},
		{ID: "default-serum-niacinamide", Name: "Niacinamide 10% Serum", Category: model.CategorySerum,
			Tags: []string{"pores", "redness"}, Ingredients: []string{"niacinamide"}, Price: 17, BaseWeight: 12},
		{ID: "default-serum-vitc", Name: "Vitamin C Brightening Serum", Category: model.CategorySerum,
			Tags: []string{"dark_spots", "pigmentation"}, Ingredients: []string{"vitamin c"}, Price: 32, BaseWeight: 12},
		{ID: "default-serum-retinol", Name: "Retinol Renewal Serum", Category: model.CategorySerum,
			Tags: []string{"wrinkles", "texture"}, Ingredients: []string{"retinol"}, Price: 35, BaseWeight: 11},
		{ID: "default-moisturizer", Name: "Barrier Repair Moisturizer", Category: model.CategoryMoisturizer,
			Tags: []string{"redness"}, Ingredients: []string{"hyaluronic acid"}, Price: 21, BaseWeight: 13},
		{ID: "default-sunscreen", Name: "Daily Mineral SPF 50", Category: model.CategorySunscreen,
			Tags: []string{"dark_spots", "pigmentation", "wrinkles"}, Price: 19, BaseWeight: 14},
		{ID: "default-mask-clay", Name: "Deep Clean Clay Mask", Category: model.CategoryMask,
			Tags: []string{"pores", "acne"}, Price: 16, BaseWeight: 8},
		{ID: "default-toner", Name: "Hydrating Toner", Category: model.CategoryToner,
			Tags: []string{"redness", "texture"}, Price: 13, BaseWeight: 8},
		{ID: "default-exfoliant-bha", Name: "BHA Liquid Exfoliant", Category: model.CategoryExfoliant,
			Tags: []string{"texture", "pores", "acne"}, Ingredients: []string{"salicylic acid"}, Price: 24, BaseWeight: 10},
		{ID: "default-exfoliant-aha", Name: "AHA Resurfacing Exfoliant", Category: model.CategoryExfoliant,
			Tags: []string{"texture", "dark_spots"}, Ingredients: []string{"glycolic acid"}, Price: 25, BaseWeight: 9},
	}
}
