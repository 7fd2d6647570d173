package models

// Listing is one item returned by a Kijiji search. Price is in cents and nil
// when the listing has no price ("Please Contact", swap/trade, etc.).
type Listing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Price       *int64 `json:"price"`
	Description string `json:"description"`
}

// Category is a Kijiji search category as shown in the admin UI.
type Category struct {
	ID            int64  `json:"id"`
	LocalizedName string `json:"localizedName"`
	ParentID      int64  `json:"parentId"`
}
