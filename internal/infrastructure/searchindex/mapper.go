package searchindex

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nani/backend/internal/domain"
)

// ingredientSplitRegex splits a flat ingredient string into lines
var ingredientSplitRegex = regexp.MustCompile(`[\n,;]+`)

// rawHit mirrors an indexed document. Ingredient lists and prices are stored
// inconsistently across datasets, so both are decoded loosely.
type rawHit struct {
	ObjectID        string          `json:"objectID"`
	Title           string          `json:"title"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           json.RawMessage `json:"price"`
	Ingredients     json.RawMessage `json:"ingredients"`
	IngredientsText string          `json:"ingredients_text"`
	Instructions    json.RawMessage `json:"instructions"`
	Image           string          `json:"image"`
	Description     string          `json:"description"`
	CookTime        string          `json:"cook_time"`
}

// DecodeHit converts an indexed document into a SearchHit.
// The document id is used when the source carries no objectID.
func DecodeHit(id string, source []byte) (domain.SearchHit, error) {
	var raw rawHit
	if err := json.Unmarshal(source, &raw); err != nil {
		return domain.SearchHit{}, fmt.Errorf("invalid hit source: %w", err)
	}

	hit := domain.SearchHit{
		ObjectID:        raw.ObjectID,
		Title:           strings.TrimSpace(raw.Title),
		Name:            strings.TrimSpace(raw.Name),
		Category:        raw.Category,
		Price:           decodePrice(raw.Price),
		Ingredients:     decodeStringList(raw.Ingredients),
		IngredientsText: raw.IngredientsText,
		Instructions:    decodeText(raw.Instructions),
		Image:           raw.Image,
		Description:     raw.Description,
		CookTime:        raw.CookTime,
	}
	if hit.ObjectID == "" {
		hit.ObjectID = id
	}
	if len(hit.Ingredients) == 0 && hit.IngredientsText != "" {
		hit.Ingredients = splitIngredients(hit.IngredientsText)
	}
	return hit, nil
}

// decodePrice accepts a JSON number or a numeric string such as "$4.99"
func decodePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "$"), 64); err == nil {
			return v
		}
	}
	return 0
}

// decodeStringList accepts a JSON array of strings or a single delimited string
func decodeStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return compact(list)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return splitIngredients(s)
	}
	return nil
}

// decodeText accepts a JSON string or an array of steps joined by newlines
func decodeText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var steps []string
	if err := json.Unmarshal(raw, &steps); err == nil {
		return strings.Join(compact(steps), "\n")
	}
	return ""
}

func splitIngredients(s string) []string {
	return compact(ingredientSplitRegex.Split(s, -1))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
