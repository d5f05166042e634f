package product

import (
	"regexp"
	"strings"
)

// Merchandise categories (closed set)
const (
	CategoryFurniture   = "Furniture"
	CategoryElectronics = "Electronics"
	CategoryClothing    = "Clothing & Apparel"
	CategoryHomeKitchen = "Home & Kitchen"
	CategoryToys        = "Toys & Games"
	CategoryBooks       = "Books & Media"
	CategorySports      = "Sports & Outdoors"
	CategoryBeauty      = "Beauty & Health"
	CategoryAutomotive  = "Automotive"
	CategoryJewelry     = "Jewelry & Watches"

	// GeneralMerchandise is the default when no rule matches
	GeneralMerchandise = "General Merchandise"
)

type categoryRule struct {
	category string
	pattern  *regexp.Regexp
}

func newRule(category string, keywords ...string) categoryRule {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return categoryRule{
		category: category,
		pattern:  regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// categoryRules is checked top to bottom; the first match wins even when a
// later category's keywords would also match. The order is part of the
// classifier's contract ("gaming chair" is Furniture, not Electronics).
var categoryRules = []categoryRule{
	newRule(CategoryFurniture,
		"chair", "sofa", "couch", "desk", "table", "dresser", "bookshelf",
		"cabinet", "mattress", "ottoman", "recliner", "nightstand", "wardrobe"),
	newRule(CategoryElectronics,
		"laptop", "phone", "tablet", "tv", "television", "monitor", "camera",
		"headphone", "headphones", "earbuds", "speaker", "console", "gaming",
		"router", "keyboard", "mouse", "ssd", "drone", "smartwatch", "charger"),
	newRule(CategoryClothing,
		"shirt", "t-shirt", "pants", "dress", "jacket", "hoodie", "sweater",
		"jeans", "shoes", "sneaker", "sneakers", "boots", "socks", "hat",
		"scarf", "gloves", "coat", "skirt"),
	newRule(CategoryHomeKitchen,
		"blender", "cookware", "knife", "pan", "pot", "mug", "dinnerware",
		"toaster", "kettle", "vacuum", "bedding", "pillow", "towel", "curtain",
		"lamp", "rug", "microwave", "mixer"),
	newRule(CategoryToys,
		"toy", "toys", "lego", "puzzle", "doll", "playset", "board game",
		"action figure", "plush", "stuffed animal"),
	newRule(CategoryBooks,
		"book", "novel", "paperback", "hardcover", "vinyl", "dvd", "blu-ray",
		"magazine", "comic", "textbook"),
	newRule(CategorySports,
		"bike", "bicycle", "tent", "kayak", "dumbbell", "dumbbells",
		"treadmill", "yoga", "golf", "fishing", "camping", "surfboard",
		"paddle", "skateboard"),
	newRule(CategoryBeauty,
		"shampoo", "conditioner", "lotion", "makeup", "skincare", "vitamin",
		"vitamins", "supplement", "supplements", "perfume", "cologne",
		"serum", "sunscreen"),
	newRule(CategoryAutomotive,
		"tire", "tires", "wiper", "alternator", "spark plug", "headlight",
		"brake pad", "motor oil", "car battery", "floor mats"),
	newRule(CategoryJewelry,
		"ring", "necklace", "bracelet", "earring", "earrings", "watch",
		"pendant", "brooch"),
}

// Classify maps a product name and URL to a merchandise category.
// The name and URL are folded into one lowercase blob and tested against the
// ordered rule list with word-boundary matching.
func Classify(name, rawurl string) string {
	blob := strings.ToLower(name + " " + rawurl)
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(blob) {
			return rule.category
		}
	}
	return GeneralMerchandise
}

// Categories returns the closed category set including the default
func Categories() []string {
	cats := make([]string, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		cats = append(cats, rule.category)
	}
	return append(cats, GeneralMerchandise)
}
