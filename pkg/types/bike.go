package types

// BikeEntry is a persisted purchase record. ID is assigned by the store on
// insert and is never reused; the remaining fields are supplied by the caller.
type BikeEntry struct {
	ID        int64   `json:"id"`
	Model     string  `json:"model"`
	Brand     string  `json:"brand"`
	BuiltYear int     `json:"built_year"`
	Year      int     `json:"year"` // Year the user claims ownership or purchase.
	Price     float64 `json:"price"`
}

// CatalogEntry is static reference data for a known model.
// It is never persisted.
type CatalogEntry struct {
	Model     string  `json:"model" yaml:"model"`
	Brand     string  `json:"brand" yaml:"brand"`
	Price     float64 `json:"price" yaml:"price"`
	BuiltYear int     `json:"built_year" yaml:"built_year"`
}
