package booking

import "github.com/wolfman30/clinic-portal/internal/clinicapi"

// View is the render model for the booking page.
type View struct {
	Step               Step                   `json:"step"`
	StepTitle          string                 `json:"step_title"`
	Steps              []string               `json:"steps"`
	Department         string                 `json:"department"`
	DoctorID           string                 `json:"doctor_id"`
	Date               string                 `json:"date"`
	Time               string                 `json:"time"`
	Reason             string                 `json:"reason"`
	Departments        []Department           `json:"departments"`
	TimeSlots          []string               `json:"time_slots"`
	Doctors            []clinicapi.Doctor     `json:"doctors"`
	NoDoctorsAvailable bool                   `json:"no_doctors_available"`
	Status             Status                 `json:"status"`
	Error              string                 `json:"error,omitempty"`
	Appointment        *clinicapi.Appointment `json:"appointment,omitempty"`
}

// View builds the render model for the current state.
func (w *Wizard) View() View {
	s := w.State()
	doctors := s.Doctors
	if doctors == nil {
		doctors = []clinicapi.Doctor{}
	}
	noDoctors := s.Step == StepDoctor &&
		s.Department != "" &&
		s.DoctorsFor == s.Department &&
		len(s.Doctors) == 0
	return View{
		Step:               s.Step,
		StepTitle:          stepTitles[s.Step-1],
		Steps:              StepTitles(),
		Department:         s.Department,
		DoctorID:           s.DoctorID,
		Date:               s.Date,
		Time:               s.Time,
		Reason:             s.Reason,
		Departments:        Departments(),
		TimeSlots:          TimeSlots(),
		Doctors:            doctors,
		NoDoctorsAvailable: noDoctors,
		Status:             s.Status,
		Error:              s.Error,
		Appointment:        s.Appointment,
	}
}
