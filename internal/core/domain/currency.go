package domain

// Currency is immutable reference data fixing the minor-unit scale for all
// amounts denominated in it.
type Currency struct {
	Code     string `json:"code"`
	Decimals uint8  `json:"decimals"`
}
