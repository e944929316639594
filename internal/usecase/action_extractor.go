package usecase

import (
	"regexp"
	"strings"

	"github.com/nani/backend/internal/domain"
)

// CartBlockTag opens the section in which the assistant lists products it added
const CartBlockTag = "[ITEMS ADDED TO CART]"

var (
	cartBlockOpenPattern = regexp.MustCompile(`(?i)\[ITEMS ADDED TO CART\](?:\*\*)?:?(?:\*\*)?`)
	bracketTagPattern    = regexp.MustCompile(`\[[^\]\n]*\]`)
	bulletMarkerPattern  = regexp.MustCompile(`^[-*]\s+`)
	trailingParenPattern = regexp.MustCompile(`\s*\(.*?\)\s*$`)
)

const dashPriceSeparator = " - $"

type parseState int

const (
	stateScanning parseState = iota
	stateInCartBlock
	stateDone
)

// cartBlockParser walks the assistant reply line by line
type cartBlockParser struct {
	state parseState
	names []string
}

func (p *cartBlockParser) feed(line string) {
	switch p.state {
	case stateScanning:
		loc := cartBlockOpenPattern.FindStringIndex(line)
		if loc == nil {
			return
		}
		p.state = stateInCartBlock
		p.consume(line[loc[1]:])
	case stateInCartBlock:
		p.consume(line)
	}
}

// consume handles block content, stopping at the next bracketed tag
func (p *cartBlockParser) consume(content string) {
	if loc := bracketTagPattern.FindStringIndex(content); loc != nil {
		content = content[:loc[0]]
		p.state = stateDone
	}
	if name, ok := bulletItemName(content); ok {
		p.names = append(p.names, name)
	}
}

// bulletItemName extracts the product name from one bullet line
func bulletItemName(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
		return "", false
	}
	line = bulletMarkerPattern.ReplaceAllString(line, "")
	line = trailingParenPattern.ReplaceAllString(line, "")
	if idx := strings.Index(line, dashPriceSeparator); idx >= 0 {
		line = line[:idx]
	}
	line = strings.ReplaceAll(line, "**", "")
	line = strings.TrimSpace(line)
	return line, line != ""
}

// ParseCartBlock returns the item names listed in the first cart block of text.
// The block ends at the next bracketed tag or the end of the text.
func ParseCartBlock(text string) []string {
	p := &cartBlockParser{}
	for _, line := range strings.Split(text, "\n") {
		if p.state == stateDone {
			break
		}
		p.feed(line)
	}
	return p.names
}

// ExtractCartActions resolves the names in the reply's cart block to catalog
// products. Each name is looked up in searched first, then in catalog, by exact
// case-insensitive name and then by singular/plural equivalence. Unresolved
// names are dropped.
func ExtractCartActions(responseText string, searched, catalog []domain.Product) []domain.Product {
	var products []domain.Product
	for _, name := range ParseCartBlock(responseText) {
		if p, ok := resolveProductName(name, searched); ok {
			products = append(products, p)
			continue
		}
		if p, ok := resolveProductName(name, catalog); ok {
			products = append(products, p)
		}
	}
	return products
}

func resolveProductName(name string, products []domain.Product) (domain.Product, bool) {
	target := strings.ToLower(name)
	for _, p := range products {
		if strings.ToLower(p.Name) == target {
			return p, true
		}
	}
	for _, p := range products {
		if PluralEquivalent(p.Name, target) {
			return p, true
		}
	}
	return domain.Product{}, false
}

// FallbackCartAdditions runs the extractor only when the structured path added nothing
func FallbackCartAdditions(primary []domain.Product, responseText string, searched, catalog []domain.Product) []domain.Product {
	if len(primary) > 0 {
		return nil
	}
	return ExtractCartActions(responseText, searched, catalog)
}
