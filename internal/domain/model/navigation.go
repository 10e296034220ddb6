package model

// NavEntry is a single navigation link: target path and label.
type NavEntry struct {
	Target string
	Label  string
}
