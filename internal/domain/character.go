package domain

// Character is a catalog entry users can browse and bookmark.
// Avatar and Background hold either public URLs or object storage keys;
// keys are resolved to presigned URLs at response shaping time.
type Character struct {
	ID         int64
	Name       string
	Desc       string
	Avatar     string
	Background string
}
