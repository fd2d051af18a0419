package entity

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/annel0/blockverse/internal/world/block"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRecipe возвращается при загрузке некорректного рецепта
var ErrInvalidRecipe = errors.New("invalid recipe")

// Recipe описывает входы и выходы крафта
type Recipe struct {
	ID      string           `yaml:"-"`
	Inputs  map[block.ID]int `yaml:"inputs"`
	Outputs map[block.ID]int `yaml:"outputs"`
}

func (r Recipe) validate() error {
	if len(r.Inputs) == 0 || len(r.Outputs) == 0 {
		return fmt.Errorf("%s: пустые входы или выходы: %w", r.ID, ErrInvalidRecipe)
	}
	for id, n := range r.Inputs {
		if n <= 0 {
			return fmt.Errorf("%s: вход %s=%d: %w", r.ID, id, n, ErrInvalidRecipe)
		}
	}
	for id, n := range r.Outputs {
		if n <= 0 {
			return fmt.Errorf("%s: выход %s=%d: %w", r.ID, id, n, ErrInvalidRecipe)
		}
	}
	return nil
}

// RecipeBook набор рецептов по идентификатору
type RecipeBook struct {
	recipes map[string]Recipe
}

// DefaultRecipes возвращает встроенные рецепты
func DefaultRecipes() *RecipeBook {
	return &RecipeBook{recipes: map[string]Recipe{
		"planks": {
			ID:      "planks",
			Inputs:  map[block.ID]int{block.WoodID: 1},
			Outputs: map[block.ID]int{block.PlanksID: 4},
		},
		"sticks": {
			ID:      "sticks",
			Inputs:  map[block.ID]int{block.PlanksID: 2},
			Outputs: map[block.ID]int{block.StickID: 4},
		},
		"torch": {
			ID:      "torch",
			Inputs:  map[block.ID]int{block.CoalOreID: 1, block.StickID: 1},
			Outputs: map[block.ID]int{block.TorchID: 4},
		},
	}}
}

// recipeFile формат YAML файла рецептов
type recipeFile struct {
	Recipes map[string]Recipe `yaml:"recipes"`
}

// LoadRecipeBook читает рецепты из YAML файла
func LoadRecipeBook(path string) (*RecipeBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение рецептов %s: %w", path, err)
	}
	return ParseRecipeBook(data)
}

// ParseRecipeBook разбирает рецепты из YAML
func ParseRecipeBook(data []byte) (*RecipeBook, error) {
	var file recipeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("разбор рецептов: %w", err)
	}
	if len(file.Recipes) == 0 {
		return nil, fmt.Errorf("файл не содержит рецептов: %w", ErrInvalidRecipe)
	}

	book := &RecipeBook{recipes: make(map[string]Recipe, len(file.Recipes))}
	for id, r := range file.Recipes {
		r.ID = id
		if err := r.validate(); err != nil {
			return nil, err
		}
		book.recipes[id] = r
	}
	return book, nil
}

// Get возвращает рецепт по идентификатору
func (b *RecipeBook) Get(id string) (Recipe, bool) {
	r, ok := b.recipes[id]
	return r, ok
}

// IDs возвращает отсортированные идентификаторы рецептов
func (b *RecipeBook) IDs() []string {
	ids := make([]string, 0, len(b.recipes))
	for id := range b.recipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
