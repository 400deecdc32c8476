// Package views is the default folio theme. Every page is a templ
// component; all record text is escaped and long-text fields go through
// the markdown renderer.
package views

import "github.com/eringen/folio"

// Default returns the theme's view functions.
func Default() folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:      Home,
		About:     About,
		Portfolio: Portfolio,
		Blog:      Blog,
		Post:      Post,
		Events:    Events,
		Projects:  Projects,
		Volunteer: Volunteer,
		Contact:   Contact,

		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminList:      AdminList,
		AdminForm:      AdminForm,
		AdminSettings:  AdminSettings,

		NotFound:    NotFound,
		ServerError: ServerError,
	}
}
