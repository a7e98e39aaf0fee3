package gate

import "strings"

// Permission is an allowed action on a resource, written "resource:action"
// (e.g. "plaques:toggle", "particuliers:list").
type Permission string

// Wildcards for super permissions
const (
	WildcardAll                     = "*"
	PermissionSuperAdmin Permission = "*:*"
)

// NewPermission creates a permission from resource name and action.
func NewPermission(resource string, action Action) Permission {
	return Permission(resource + ":" + string(action))
}

// Grant expands one action list over every resource name.
func Grant(resources []string, actions ...Action) []Permission {
	perms := make([]Permission, 0, len(resources)*len(actions))
	for _, res := range resources {
		for _, a := range actions {
			perms = append(perms, NewPermission(res, a))
		}
	}
	return perms
}

// Parse splits a permission into resource and action.
func (p Permission) Parse() (resource string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Matches checks if this permission covers the requested one.
// "*:*" covers everything, "plaques:*" every action on plaques and
// "*:list" the list action on every resource.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, reqAct := requested.Parse()
	if res == "" || reqRes == "" {
		return false
	}
	resOK := res == WildcardAll || res == reqRes
	actOK := string(act) == WildcardAll || act == reqAct
	return resOK && actOK
}
