// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// NavItemViewModel is one link in the sidebar navigation.
type NavItemViewModel struct {
	Href    string
	Text    string
	Current bool
}

// UserBoxViewModel holds the signed-in user shown in the top bar.
type UserBoxViewModel struct {
	RoleLabel string
	// Name is plain text with any markup stripped.
	Name string
}

// LayoutViewModel holds everything the page layout needs around a page body.
type LayoutViewModel struct {
	Brand      string
	Title      string
	User       UserBoxViewModel
	Nav        []NavItemViewModel
	NoticeHTML string
	CSRFToken  string
	LogoutURL  string
}

// RoleOptionViewModel is one choice in the login form's role selector.
type RoleOptionViewModel struct {
	Value    string
	Label    string
	Selected bool
}

// LoginViewModel holds the data for the login form.
type LoginViewModel struct {
	Brand      string
	Roles      []RoleOptionViewModel
	UserID     string
	Error      string
	NoticeHTML string
	CSRFToken  string
	ActionURL  string
}
