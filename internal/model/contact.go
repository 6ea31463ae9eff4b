package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ContactMessage is a message submitted through the contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the required contact form fields.
func (m ContactMessage) Validate() error {
	var missing []string
	if strings.TrimSpace(m.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(m.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(m.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return eris.Errorf("contact: missing required fields: %s", strings.Join(missing, ", "))
	}
	if !strings.Contains(m.Email, "@") {
		return eris.Errorf("contact: invalid email %q", m.Email)
	}
	return nil
}
