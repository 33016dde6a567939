package programs

import (
	"simop-pkpt/auth"
	"simop-pkpt/common"
)

// ListScope computes the visibility filter for an authenticated list request.
// Admins see everything and may narrow to a requested unit; operators are
// always pinned to their own unit and any requested filter is ignored.
func ListScope(actor auth.Identity, requestedUnit string) (unit string, filtered bool) {
	if actor.IsAdmin() {
		if requestedUnit == "" {
			return "", false
		}
		return requestedUnit, true
	}
	return actor.Unit(), true
}

// CanModify decides whether actor may read, update or delete target.
// Admins may act on any program; operators only on programs of their unit.
func CanModify(actor auth.Identity, target ProgramModel) error {
	if !actor.IsAdmin() && target.ResponsibleUnit != actor.Unit() {
		return common.Forbidden("Forbidden")
	}
	return nil
}

// CreateUnit returns the unit a new program will belong to. Operators cannot
// create records for other units: the requested unit is overwritten with
// their own. Admins may target any unit.
func CreateUnit(actor auth.Identity, requestedUnit string) string {
	if actor.IsAdmin() {
		return requestedUnit
	}
	return actor.Unit()
}
