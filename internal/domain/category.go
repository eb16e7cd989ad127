package domain

// Category is one entry of the category taxonomy.
type Category struct {
	CategoryID string       `json:"categoryId"`
	Name       string       `json:"name"`
	Kind       CategoryKind `json:"kind"`
}
