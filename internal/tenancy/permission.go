package tenancy

import (
	"slices"

	"github.com/frahmantamala/mastersight/internal"
)

// Permission is a capability flag stored on a membership.
type Permission string

const (
	ViewDepartments   Permission = "viewDepartments"
	CreateDepartments Permission = "createDepartments"
	DeleteDepartments Permission = "deleteDepartments"
	EditDepartments   Permission = "editDepartments"

	ViewRoles   Permission = "viewRoles"
	CreateRoles Permission = "createRoles"
	DeleteRoles Permission = "deleteRoles"
	EditRoles   Permission = "editRoles"

	ViewUsers   Permission = "viewUsers"
	AddUsers    Permission = "addUsers"
	RemoveUsers Permission = "removeUsers"
	EditUsers   Permission = "editUsers"

	ViewSettings            Permission = "viewSettings"
	ChangeCompanyInfos      Permission = "changeCompanyInfos"
	ChangeCompanyAppearance Permission = "changeCompanyAppearance"
)

// Catalog lists every known flag in display order.
var Catalog = []Permission{
	ViewDepartments, CreateDepartments, DeleteDepartments, EditDepartments,
	ViewRoles, CreateRoles, DeleteRoles, EditRoles,
	ViewUsers, AddUsers, RemoveUsers, EditUsers,
	ViewSettings, ChangeCompanyInfos, ChangeCompanyAppearance,
}

const (
	PresetOwner    = "owner"
	PresetManager  = "manager"
	PresetEmployee = "employee"
)

// Presets are the permission bundles offered when adding a teammate.
var Presets = map[string][]Permission{
	PresetOwner: Catalog,
	PresetManager: {
		ViewDepartments, CreateDepartments, DeleteDepartments, EditDepartments,
		ViewRoles, CreateRoles, DeleteRoles, EditRoles,
		ViewUsers, AddUsers, RemoveUsers, EditUsers,
		ViewSettings,
	},
	PresetEmployee: {},
}

func IsKnown(flag string) bool {
	return slices.Contains(Catalog, Permission(flag))
}

// NormalizeGrant validates flags and drops duplicates while keeping order.
func NormalizeGrant(flags []string) ([]string, error) {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if !IsKnown(f) {
			return nil, internal.ErrInvalidPermissions
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// PresetFlags returns the flags of a named preset as strings.
func PresetFlags(name string) ([]string, bool) {
	perms, ok := Presets[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out, true
}

func Has(flags []string, p Permission) bool {
	return slices.Contains(flags, string(p))
}
