package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/nani/backend/internal/domain"
)

// DefaultLimit is the number of ingredients kept from the source list
const DefaultLimit = 2000

// RawIngredient is one record of the ingredient list file
type RawIngredient struct {
	ObjectID string `json:"objectID"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// popularItems are staple names moved to the front of the catalog
var popularItems = []string{
	"tomato", "potato", "onion", "garlic", "carrot", "spinach", "broccoli", "cucumber", "pumpkin", "cabbage",
	"apple", "banana", "orange", "strawberry", "grape", "lemon", "lime", "mango",
	"milk", "butter", "cheese", "yogurt", "cream", "egg",
	"chicken", "beef", "pork", "fish", "meat",
	"rice", "pasta", "bread", "flour", "oil", "salt", "sugar", "honey", "coffee", "tea", "water",
	"chocolate", "chip", "cookie", "nut", "popcorn", "cracker",
}

// categoryRules map keywords found in "name category" to a storefront category, first rule wins
var categoryRules = []struct {
	category domain.Category
	keywords []string
}{
	{domain.CategoryFruits, []string{"fruit", "berry", "apple", "banana"}},
	{domain.CategoryVegetables, []string{"produce", "veg"}},
	{domain.CategoryDairy, []string{"dairy", "cheese", "milk"}},
	{domain.CategorySnacks, []string{"snack", "sweet", "candy", "chocolate"}},
	{domain.CategoryPantry, []string{"pantry", "spice", "meat", "oil", "sauce", "canned", "grain", "bread", "pasta", "rice"}},
}

var catalogDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// LoadFile reads an ingredient list from path and builds the catalog
func LoadFile(path string, limit int) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return Load(f, limit)
}

// Load decodes an ingredient list and builds the catalog
func Load(r io.Reader, limit int) ([]domain.Product, error) {
	var raw []RawIngredient
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return BuildProducts(raw, limit), nil
}

// BuildProducts orders ingredients with popular staples first, keeps the first
// limit entries and derives stable storefront attributes from each id.
func BuildProducts(raw []RawIngredient, limit int) []domain.Product {
	if limit <= 0 {
		limit = DefaultLimit
	}

	sorted := make([]RawIngredient, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := strings.ToLower(sorted[i].Name), strings.ToLower(sorted[j].Name)
		aPopular, bPopular := isPopular(a), isPopular(b)
		if aPopular && bPopular {
			return jsLength(a) < jsLength(b)
		}
		return aPopular && !bPopular
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	products := make([]domain.Product, 0, len(sorted))
	for _, ing := range sorted {
		products = append(products, toProduct(ing))
	}
	return products
}

func toProduct(ing RawIngredient) domain.Product {
	id := ing.ObjectID
	category := ing.Category
	if category == "" {
		category = "Pantry"
	}
	imageTerm := ing.Category
	if imageTerm == "" {
		imageTerm = "food"
	}

	return domain.Product{
		ID:          id,
		Name:        ing.Name,
		Price:       math.Floor(seededRandom(id, 1)*15) + 1.99,
		Category:    MapCategory(ing.Name, category),
		Dietary:     []domain.DietaryTag{domain.DietaryOrganic},
		Image:       "https://tse2.mm.bing.net/th?q=" + encodeURIComponent(ing.Name+" "+imageTerm) + "&w=800&h=800&c=7&rs=1&p=0",
		Description: ing.Name + " - Fresh and high quality ingredient sourced for your kitchen.",
		Rating:      4.0 + seededRandom(id, 2),
		Reviews:     int(math.Floor(seededRandom(id, 3) * 200)),
		IsNew:       seededRandom(id, 4) > 0.8,
		Popularity:  int(math.Floor(seededRandom(id, 5) * 100)),
		DateAdded:   catalogDate,
	}
}

// MapCategory derives a storefront category from an ingredient name and its source category
func MapCategory(name, category string) domain.Category {
	combined := strings.ToLower(name + " " + category)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				return rule.category
			}
		}
	}
	return domain.CategoryOther
}

func isPopular(lowerName string) bool {
	for _, item := range popularItems {
		if strings.Contains(lowerName, item) {
			return true
		}
	}
	return false
}

// hashString is a 32-bit string hash over UTF-16 code units, matching the
// values the storefront has always shown for a given product id.
func hashString(s string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// seededRandom returns a stable value in [0, 1) for a product id and offset
func seededRandom(seed string, offset int) float64 {
	return float64(hashString(seed+strconv.Itoa(offset))%10000) / 10000
}

func jsLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
