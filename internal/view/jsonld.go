package view

import "github.com/haikalarif/portofolio-freelance/internal/catalog"

// OfferCatalog returns a schema.org Service whose catalog lists every package as an IDR offer.
func OfferCatalog(name string, pkgs []catalog.Package) map[string]any {
	offers := make([]map[string]any, 0, len(pkgs))
	for _, p := range pkgs {
		offers = append(offers, map[string]any{
			"@type":         "Offer",
			"name":          p.Name,
			"price":         p.BasePrice,
			"priceCurrency": "IDR",
		})
	}
	return map[string]any{
		"@context": "https://schema.org",
		"@type":    "Service",
		"name":     name,
		"hasOfferCatalog": map[string]any{
			"@type":           "OfferCatalog",
			"name":            name,
			"itemListElement": offers,
		},
	}
}
