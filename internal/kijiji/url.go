package kijiji

import (
	"fmt"
	"net/url"
	"strings"
)

// regionCodes maps region names to Kijiji location codes.
var regionCodes = map[string]string{
	"Edmonton":    "l1700203",
	"Calgary":     "l1700199",
	"Toronto":     "l1700273",
	"Vancouver":   "l1700287",
	"Montreal":    "l1700281",
	"Ottawa":      "l1700185",
	"Winnipeg":    "l1700192",
	"Quebec City": "l1700209",
	"Hamilton":    "l1700191",
	"Kitchener":   "l1700212",
	"London":      "l1700214",
	"Victoria":    "l1700173",
	"Halifax":     "l1700321",
	"Saskatoon":   "l1700197",
	"Regina":      "l1700196",
	"St. John's":  "l1700118",
}

const defaultRegionCode = "l1700203"

type categoryInfo struct {
	path string
	code string
}

// categoryMapping maps category ids to their URL path segment and code.
var categoryMapping = map[string]categoryInfo{
	// Cars & Vehicles
	"27":  {path: "b-cars-vehicles", code: "c27"},
	"174": {path: "b-cars-trucks", code: "c174"},
	"320": {path: "b-tires-rims", code: "c320"},
	// Buy & Sell
	"10":  {path: "b-buy-sell", code: "c10"},
	"760": {path: "b-cell-phone", code: "c760"},
	"132": {path: "b-phones", code: "c132"},
	"16":  {path: "b-computers", code: "c16"},
	"772": {path: "b-desktop-computers", code: "c772"},
	"773": {path: "b-laptops", code: "c773"},
	"774": {path: "b-tablets", code: "c774"},
	"26":  {path: "b-furniture", code: "c26"},
	"235": {path: "b-home-garden", code: "c235"},
	"638": {path: "b-garage-sales", code: "c638"},
	"12":  {path: "b-art-collectibles", code: "c12"},
	"141": {path: "b-tickets", code: "c141"},
	"657": {path: "b-sports-equipment", code: "c657"},
	"658": {path: "b-golf", code: "c658"},
	// Real Estate
	"34": {path: "b-real-estate", code: "c34"},
	"37": {path: "b-apartments-condos", code: "c37"},
	// Boats & Watercraft
	"29":  {path: "b-boats-watercraft", code: "c29"},
	"332": {path: "b-other-boat-watercraft", code: "c332"},
	"336": {path: "b-powerboats-motorboats", code: "c336"},
}

var defaultCategory = categoryInfo{path: "b-buy-sell", code: "c10"}

// BuildSearchURL builds a Kijiji search results URL for a region, optional
// keyword, category id, and radius in kilometres.
func BuildSearchURL(regionURL, keyword, category string, radius int) string {
	if radius <= 0 {
		radius = 50
	}

	regionName := regionNameFromURL(regionURL)
	regionCode, ok := regionCodes[titleCase(regionName)]
	if !ok {
		regionCode = defaultRegionCode
	}

	cat, ok := categoryMapping[category]
	if !ok {
		cat = defaultCategory
	}

	base := fmt.Sprintf("https://www.kijiji.ca/%s/%s", cat.path, regionName)
	var path string
	if strings.TrimSpace(keyword) != "" {
		path = fmt.Sprintf("/%s/k0%s%s", url.PathEscape(keyword), cat.code, regionCode)
	} else {
		path = fmt.Sprintf("/%s%s", cat.code, regionCode)
	}
	query := fmt.Sprintf("?address=%s&radius=%d&sort=dateDesc&view=list",
		url.QueryEscape(regionName), radius)

	return base + path + query
}

// regionNameFromURL extracts the region segment from a stored region URL,
// skipping category ("b-...") and keyword ("k0...") segments.
func regionNameFromURL(regionURL string) string {
	u, err := url.Parse(regionURL)
	if err != nil {
		return ""
	}
	for _, part := range strings.Split(u.Path, "/") {
		if part == "" || strings.HasPrefix(part, "b-") || strings.HasPrefix(part, "k0") {
			continue
		}
		return part
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
