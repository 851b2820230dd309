package clinicapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// User is the profile returned by the auth endpoints.
type User struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Phone          string `json:"phone,omitempty"`
	Department     string `json:"department,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Experience     int    `json:"experience,omitempty"`
	IsApproved     bool   `json:"isApproved,omitempty"`
}

// LoginRequest is the credentials payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errors.New("clinicapi: email and password are required")
	}
	return nil
}

// RegisterRequest creates a patient or (pending approval) doctor account.
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Phone          string `json:"phone,omitempty"`
	Department     string `json:"department,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Experience     int    `json:"experience,omitempty"`
}

func (r RegisterRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("clinicapi: name is required")
	}
	return LoginRequest{Email: r.Email, Password: r.Password}.validate()
}

// AuthResponse carries the backend bearer token and the authenticated user.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Doctor is an approved doctor listed by the user directory.
type Doctor struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Department     string `json:"department,omitempty"`
	Experience     *int   `json:"experience,omitempty"`
	Email          string `json:"email,omitempty"`
}

// AppointmentRequest is the booking payload for POST /appointments.
type AppointmentRequest struct {
	DoctorID   string `json:"doctor"`
	Department string `json:"department"`
	Date       string `json:"appointmentDate"`
	Time       string `json:"appointmentTime"`
	Reason     string `json:"reason"`
}

// Party is an appointment participant. The backend sends either a populated
// object or a bare id string.
type Party struct {
	ID             string `json:"_id"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

func (p *Party) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.ID)
	}
	type plain Party
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = Party(out)
	return nil
}

// Appointment is a booked consultation.
type Appointment struct {
	ID         string `json:"_id"`
	Patient    *Party `json:"patient,omitempty"`
	Doctor     *Party `json:"doctor,omitempty"`
	Department string `json:"department"`
	Date       string `json:"appointmentDate"`
	Time       string `json:"appointmentTime"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

// Conversation is one entry of GET /messages/conversations.
type Conversation struct {
	User        Party  `json:"user"`
	LastMessage string `json:"lastMessage"`
	UnreadCount int    `json:"unreadCount"`
}

// Message is a single chat message between two users.
type Message struct {
	ID        string `json:"_id"`
	Sender    *Party `json:"sender,omitempty"`
	Receiver  *Party `json:"receiver,omitempty"`
	Content   string `json:"content"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// SendMessageRequest is the payload for POST /messages.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver"`
	Content    string `json:"content"`
}

func (r SendMessageRequest) validate() error {
	if strings.TrimSpace(r.ReceiverID) == "" {
		return errors.New("clinicapi: receiver is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("clinicapi: message content is required")
	}
	return nil
}

// Record is a medical record issued by a doctor.
type Record struct {
	ID           string   `json:"_id"`
	Patient      *Party   `json:"patient,omitempty"`
	Doctor       *Party   `json:"doctor,omitempty"`
	Diagnosis    string   `json:"diagnosis"`
	Prescription string   `json:"prescription,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Documents    []string `json:"documents,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
}

// CreateRecordRequest is the payload for POST /users/records.
type CreateRecordRequest struct {
	PatientID    string `json:"patient"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (r CreateRecordRequest) validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return errors.New("clinicapi: patient is required")
	}
	if strings.TrimSpace(r.Diagnosis) == "" {
		return errors.New("clinicapi: diagnosis is required")
	}
	return nil
}

// Stats holds dashboard counters. Field presence depends on the caller's role.
type Stats struct {
	TotalPatients     int `json:"totalPatients,omitempty"`
	TotalDoctors      int `json:"totalDoctors,omitempty"`
	PendingDoctors    int `json:"pendingDoctors,omitempty"`
	TotalAppointments int `json:"totalAppointments,omitempty"`
	TotalRecords      int `json:"totalRecords,omitempty"`
}
