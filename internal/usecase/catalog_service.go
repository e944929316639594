package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nani/backend/internal/domain"
)

// Sort options accepted by CatalogService.List
const (
	SortFeatured   = "featured"
	SortPriceLow   = "price-low"
	SortPriceHigh  = "price-high"
	SortNewest     = "newest"
	SortPopularity = "popularity"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	relatedLimit    = 4
)

// ProductFilter narrows and orders a catalog listing. Zero values disable a filter.
type ProductFilter struct {
	Query    string
	Category domain.Category
	Dietary  []domain.DietaryTag
	MinPrice float64
	MaxPrice float64
	Sort     string
	Offset   int
	Limit    int
}

// ProductPage is one page of a filtered listing
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

// CatalogService answers storefront browsing queries over the loaded catalog
type CatalogService struct {
	products []domain.Product
	byID     map[string]int
}

// NewCatalogService indexes the matcher's catalog by id
func NewCatalogService(matcher *CatalogMatcher) *CatalogService {
	products := matcher.Catalog()
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &CatalogService{products: products, byID: byID}
}

// Get returns the product with the given id
func (s *CatalogService) Get(id string) (domain.Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return s.products[i], nil
}

// Related returns up to four other products from the same category
func (s *CatalogService) Related(id string) ([]domain.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	related := make([]domain.Product, 0, relatedLimit)
	for _, p := range s.products {
		if p.Category != product.Category || p.ID == product.ID {
			continue
		}
		related = append(related, p)
		if len(related) == relatedLimit {
			break
		}
	}
	return related, nil
}

// List filters, sorts and pages the catalog
func (s *CatalogService) List(filter ProductFilter) (ProductPage, error) {
	if filter.Offset < 0 || filter.Limit < 0 {
		return ProductPage{}, fmt.Errorf("%w: negative offset or limit", domain.ErrInvalidRequest)
	}
	if filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		return ProductPage{}, fmt.Errorf("%w: min_price above max_price", domain.ErrInvalidRequest)
	}
	less, err := sortOrder(filter.Sort)
	if err != nil {
		return ProductPage{}, err
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var matched []domain.Product
	for _, p := range s.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if !hasAllDietary(p, filter.Dietary) {
			continue
		}
		if filter.MinPrice > 0 && p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		matched = append(matched, p)
	}

	if less != nil {
		sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	}

	page := ProductPage{Products: []domain.Product{}, Total: len(matched), Offset: filter.Offset, Limit: limit}
	if filter.Offset < len(matched) {
		end := filter.Offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Products = matched[filter.Offset:end]
	}
	return page, nil
}

// sortOrder returns the comparison for a sort option; nil keeps catalog order
func sortOrder(option string) (func(a, b domain.Product) bool, error) {
	switch option {
	case "", SortFeatured:
		return nil, nil
	case SortPriceLow:
		return func(a, b domain.Product) bool { return a.Price < b.Price }, nil
	case SortPriceHigh:
		return func(a, b domain.Product) bool { return a.Price > b.Price }, nil
	case SortNewest:
		return func(a, b domain.Product) bool { return a.DateAdded.After(b.DateAdded) }, nil
	case SortPopularity:
		return func(a, b domain.Product) bool { return a.Popularity > b.Popularity }, nil
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidRequest, option)
	}
}

func hasAllDietary(p domain.Product, tags []domain.DietaryTag) bool {
	for _, tag := range tags {
		if !p.HasDietary(tag) {
			return false
		}
	}
	return true
}
