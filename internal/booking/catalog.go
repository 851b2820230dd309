package booking

import "slices"

// Department is a bookable clinic department.
type Department struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var departments = []Department{
	{Name: "Cardiology", Description: "Heart and cardiovascular care"},
	{Name: "Neurology", Description: "Brain and nervous system"},
	{Name: "Orthopedics", Description: "Bones, joints and muscles"},
	{Name: "Pediatrics", Description: "Children's health and care"},
	{Name: "Dermatology", Description: "Skin care and treatment"},
	{Name: "General Medicine", Description: "General health concerns"},
}

var timeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
}

var stepTitles = []string{
	"Select Department",
	"Choose Doctor",
	"Schedule Date & Time",
	"Consultation Details",
}

// Departments returns the bookable departments in display order.
func Departments() []Department { return slices.Clone(departments) }

// TimeSlots returns the fixed daily consultation slots.
func TimeSlots() []string { return slices.Clone(timeSlots) }

// StepTitles returns the wizard step headings, index 0 being step 1.
func StepTitles() []string { return slices.Clone(stepTitles) }

func knownDepartment(name string) bool {
	return slices.ContainsFunc(departments, func(d Department) bool { return d.Name == name })
}

func knownTimeSlot(slot string) bool {
	return slices.Contains(timeSlots, slot)
}
