package product

import (
	"net/url"
	"strings"
)

// UnknownRetailer is the label for domains outside the known set
const UnknownRetailer = "Unknown Retailer"

// retailerDomains maps domain fragments to retailer labels.
// Fragments end with a dot so "amazon." matches amazon.com and amazon.co.uk
// without matching lookalike hosts.
var retailerDomains = []struct {
	fragment string
	label    string
}{
	{"amazon.", "Amazon"},
	{"walmart.", "Walmart"},
	{"target.", "Target"},
	{"ebay.", "eBay"},
	{"bestbuy.", "Best Buy"},
	{"etsy.", "Etsy"},
	{"wayfair.", "Wayfair"},
	{"homedepot.", "Home Depot"},
	{"costco.", "Costco"},
	{"macys.", "Macy's"},
	{"ikea.", "IKEA"},
	{"chewy.", "Chewy"},
	{"aliexpress.", "AliExpress"},
	{"nike.", "Nike"},
}

// DetectRetailer maps a URL's domain to a known retailer label
func DetectRetailer(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + rawurl)
		if err != nil || u.Host == "" {
			return UnknownRetailer
		}
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	for _, r := range retailerDomains {
		if strings.HasPrefix(host, r.fragment) || strings.Contains(host, "."+r.fragment) {
			return r.label
		}
	}
	return UnknownRetailer
}
