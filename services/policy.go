package services

import "logistics-api/models"

// Every authorization decision about orders is made here; call sites never
// compare roles themselves.

// canTransition reports whether caller may change an order's lifecycle status.
func canTransition(caller models.Caller) bool {
	return caller.Role == models.RoleAdmin
}

// canRead reports whether caller may see order o.
func canRead(caller models.Caller, o *models.Order) bool {
	switch caller.Role {
	case models.RoleAdmin:
		return true
	case models.RoleDriver:
		return o.DriverID != nil && *o.DriverID == caller.ID
	default:
		return o.CreateUserID == caller.ID
	}
}

// scopeFilter pins a listing to the rows caller may see, overriding any
// client-supplied value for the pinned column.
func scopeFilter(caller models.Caller, f models.OrderFilter) models.OrderFilter {
	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleDriver:
		f.DriverID = caller.ID
	default:
		f.CreateUserID = caller.ID
	}
	return f
}

// isAdmin gates the back-office operations: warehouses, statistics, user listing.
func isAdmin(caller models.Caller) bool {
	return caller.Role == models.RoleAdmin
}

// ownsTask reports whether caller is the driver assigned to task t.
func ownsTask(caller models.Caller, t *models.DeliveryTask) bool {
	return caller.Role == models.RoleDriver && t.DriverID == caller.ID
}

func isDriver(caller models.Caller) bool {
	return caller.Role == models.RoleDriver
}
