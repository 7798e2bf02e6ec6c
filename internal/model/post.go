package model

// Post is the forum's only persisted entity. ID is assigned by the store.
type Post struct {
	ID    string
	Title string
	Text  string
}
