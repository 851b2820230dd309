package access

// NavItem is a navigation link shown to a role.
type NavItem struct {
	To    string `json:"to"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

const (
	iconDashboard    = "M12 20a8 8 0 1 0 0-16 8 8 0 0 0 0 16zm0-8l3-4M4.93 10.93A9 9 0 0 1 12 5"
	iconAppointments = "M8 7V3m8 4V3m-9 8h10M5 21h14a2 2 0 002-2V7a2 2 0 00-2-2H5a2 2 0 00-2 2v12a2 2 0 002 2z"
	iconRecords      = "M9 12h6m-6 4h6m2 5H7a2 2 0 01-2-2V5a2 2 0 012-2h5.586a1 1 0 01.707.293l5.414 5.414a1 1 0 01.293.707V19a2 2 0 01-2 2z"
	iconPatients     = "M17 20h5v-2a3 3 0 00-5.356-1.857M17 20H7m10 0v-2c0-.656-.126-1.283-.356-1.857M7 20H2v-2a3 3 0 015.356-1.857M7 20v-2c0-.656.126-1.283.356-1.857m0 0a5.002 5.002 0 019.288 0M15 7a3 3 0 11-6 0 3 3 0 016 0zm6 3a2 2 0 11-4 0 2 2 0 014 0zM7 10a2 2 0 11-4 0 2 2 0 014 0z"
	iconApprovals    = "M9 12l2 2 4-4m6 2a9 9 0 11-18 0 9 9 0 0118 0z"
)

// NavItemsFor derives the ordered navigation links for a role. The dashboard link is
// always first; anonymous and unknown roles get none.
func NavItemsFor(role Role) []NavItem {
	dashboard, err := DefaultDashboardFor(role)
	if err != nil {
		return []NavItem{}
	}
	items := []NavItem{{To: dashboard, Label: "Dashboard", Icon: iconDashboard}}

	switch role {
	case RolePatient:
		items = append(items,
			NavItem{To: PatientAppointmentsPath, Label: "Appointments", Icon: iconAppointments},
			NavItem{To: PatientRecordsPath, Label: "Records", Icon: iconRecords},
		)
	case RoleDoctor:
		items = append(items,
			NavItem{To: DoctorAppointmentsPath, Label: "Appointments", Icon: iconAppointments},
			NavItem{To: DoctorPatientsPath, Label: "Patients", Icon: iconPatients},
		)
	case RoleAdmin:
		items = append(items,
			NavItem{To: AdminDoctorApprovalsPath, Label: "Doctor Approvals", Icon: iconApprovals},
		)
	}
	return items
}

// NavItemsForSession is NavItemsFor with anonymous handling.
func NavItemsForSession(s *Session) []NavItem {
	if s == nil {
		return []NavItem{}
	}
	return NavItemsFor(s.Role)
}
