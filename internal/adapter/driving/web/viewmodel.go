package web

import (
	vm "github.com/ericfisherdev/peerportal/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/peerportal/internal/application"
	"github.com/ericfisherdev/peerportal/internal/domain/model"
)

const brand = "360績效互評系統"

// loginRoles is the order roles appear in the login form.
var loginRoles = []model.Role{model.RoleStudent, model.RoleTeacher, model.RoleMaster}

// toLayoutViewModel builds the layout around a page for the cached snapshot.
// currentPath marks the active navigation entry.
func toLayoutViewModel(snap model.CredentialSnapshot, title, currentPath, csrf, noticeHTML string) vm.LayoutViewModel {
	entries := application.ResolveNav(snap.Role)
	nav := make([]vm.NavItemViewModel, 0, len(entries))
	for _, e := range entries {
		nav = append(nav, vm.NavItemViewModel{
			Href:    e.Target,
			Text:    e.Label,
			Current: e.Target == currentPath,
		})
	}

	return vm.LayoutViewModel{
		Brand: brand,
		Title: title,
		User: vm.UserBoxViewModel{
			RoleLabel: application.RoleLabel(snap.Role),
			Name:      SanitizeText(snap.Name()),
		},
		Nav:        nav,
		NoticeHTML: noticeHTML,
		CSRFToken:  csrf,
		LogoutURL:  "/logout",
	}
}

// toLoginViewModel builds the login form, preselecting role. An empty or
// unknown role preselects student.
func toLoginViewModel(role model.Role, userID, errMsg, csrf, noticeHTML string) vm.LoginViewModel {
	if !role.Known() {
		role = model.RoleStudent
	}

	roles := make([]vm.RoleOptionViewModel, 0, len(loginRoles))
	for _, r := range loginRoles {
		roles = append(roles, vm.RoleOptionViewModel{
			Value:    string(r),
			Label:    application.RoleLabel(r),
			Selected: r == role,
		})
	}

	return vm.LoginViewModel{
		Brand:      brand,
		Roles:      roles,
		UserID:     userID,
		Error:      errMsg,
		NoticeHTML: noticeHTML,
		CSRFToken:  csrf,
		ActionURL:  model.LoginPath,
	}
}
