package application

import "github.com/ericfisherdev/peerportal/internal/domain/model"

var navByRole = map[model.Role][]model.NavEntry{
	model.RoleStudent: {
		{Target: "/student/index", Label: "學生首頁"},
		{Target: "/student/self", Label: "自我評分"},
		{Target: "/student/peer", Label: "同儕評分"},
	},
	model.RoleTeacher: {
		{Target: "/teacher/index", Label: "全班完成度"},
		{Target: "/teacher/score", Label: "老師評分"},
	},
	model.RoleMaster: {
		{Target: "/master/index", Label: "HR首頁"},
		{Target: "/master/summary", Label: "加權總分"},
		{Target: "/master/analyze", Label: "各項指標說明"},
		{Target: "/master/match", Label: "趣味分析"},
	},
}

var roleLabels = map[model.Role]string{
	model.RoleTeacher: "老師",
	model.RoleStudent: "學生",
	model.RoleMaster:  "HR",
}

// unknownRoleLabel is shown when no role is cached.
const unknownRoleLabel = "未知"

// ResolveNav returns the ordered navigation for role. Unknown roles get a
// single entry back to the login view. The returned slice is a copy.
func ResolveNav(role model.Role) []model.NavEntry {
	entries, ok := navByRole[role]
	if !ok {
		return []model.NavEntry{{Target: model.LoginPath, Label: "回登入"}}
	}
	return append([]model.NavEntry(nil), entries...)
}

// RoleLabel returns the display label for role: the localized name for known
// roles, the raw role otherwise, or an unknown marker when role is empty.
func RoleLabel(role model.Role) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	if role == "" {
		return unknownRoleLabel
	}
	return string(role)
}

// HomePath is the landing page for role: its first navigation entry.
func HomePath(role model.Role) string {
	return ResolveNav(role)[0].Target
}

// PageRoles returns the roles allowed to open target, or nil when no role's
// navigation contains it.
func PageRoles(target string) []model.Role {
	for _, role := range []model.Role{model.RoleTeacher, model.RoleStudent, model.RoleMaster} {
		for _, entry := range navByRole[role] {
			if entry.Target == target {
				return []model.Role{role}
			}
		}
	}
	return nil
}
