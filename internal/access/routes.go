package access

import (
	"errors"
	"slices"
)

// ErrRouteNotFound is returned by Lookup for paths outside the route table.
var ErrRouteNotFound = errors.New("access: route not found")

// Route is a guarded view and the roles permitted to render it.
type Route struct {
	Path          string
	Title         string
	RequiredRoles []Role
}

// Permits reports whether role is in the route's required set.
func (r Route) Permits(role Role) bool {
	return slices.Contains(r.RequiredRoles, role)
}

// View paths.
const (
	PatientBookAppointmentPath = "/patient/book-appointment"
	PatientAppointmentsPath    = "/patient/appointments"
	PatientMessagesPath        = "/patient/messages"
	PatientRecordsPath         = "/patient/records"
	DoctorAppointmentsPath     = "/doctor/appointments"
	DoctorMessagesPath         = "/doctor/messages"
	DoctorPatientsPath         = "/doctor/patients"
	AdminDoctorApprovalsPath   = "/admin/doctor-approvals"
)

var routeTable = []Route{
	{Path: PatientDashboardPath, Title: "Dashboard", RequiredRoles: []Role{RolePatient}},
	{Path: PatientBookAppointmentPath, Title: "Book Appointment", RequiredRoles: []Role{RolePatient}},
	{Path: PatientAppointmentsPath, Title: "Appointments", RequiredRoles: []Role{RolePatient}},
	{Path: PatientMessagesPath, Title: "Messages", RequiredRoles: []Role{RolePatient}},
	{Path: PatientRecordsPath, Title: "Records", RequiredRoles: []Role{RolePatient}},

	{Path: DoctorDashboardPath, Title: "Dashboard", RequiredRoles: []Role{RoleDoctor}},
	{Path: DoctorAppointmentsPath, Title: "Appointments", RequiredRoles: []Role{RoleDoctor}},
	{Path: DoctorMessagesPath, Title: "Messages", RequiredRoles: []Role{RoleDoctor}},
	{Path: DoctorPatientsPath, Title: "Patients", RequiredRoles: []Role{RoleDoctor}},

	{Path: AdminDashboardPath, Title: "Dashboard", RequiredRoles: []Role{RoleAdmin}},
	{Path: AdminDoctorApprovalsPath, Title: "Doctor Approvals", RequiredRoles: []Role{RoleAdmin}},
}

// Routes returns a copy of the static route table.
func Routes() []Route {
	out := make([]Route, len(routeTable))
	for i, r := range routeTable {
		r.RequiredRoles = slices.Clone(r.RequiredRoles)
		out[i] = r
	}
	return out
}

// Lookup finds the route registered for path.
func Lookup(path string) (Route, error) {
	for _, r := range routeTable {
		if r.Path == path {
			r.RequiredRoles = slices.Clone(r.RequiredRoles)
			return r, nil
		}
	}
	return Route{}, ErrRouteNotFound
}

// MustLookup is Lookup for paths known at compile time.
func MustLookup(path string) Route {
	r, err := Lookup(path)
	if err != nil {
		panic("access: unregistered route " + path)
	}
	return r
}
