// Package contact validates the contact form and turns it into a chat message.
package contact

import (
	"fmt"
	"html"
	"net/mail"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Field names as posted by the contact form.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldService = "service"
	FieldMessage = "message"
)

// RequiredFields lists the fields that must be non-blank, in form order.
var RequiredFields = []string{FieldName, FieldEmail, FieldService, FieldMessage}

// Form is one contact form submission.
type Form struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Message string
}

// ValidationError reports the fields that blocked a submission.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "contact: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Missing {
		if f == field {
			return true
		}
	}
	for _, f := range e.Invalid {
		if f == field {
			return true
		}
	}
	return false
}

// FormFromValues reads a posted form.
func FormFromValues(v url.Values) Form {
	return Form{
		Name:    v.Get(FieldName),
		Email:   v.Get(FieldEmail),
		Phone:   v.Get(FieldPhone),
		Service: v.Get(FieldService),
		Message: v.Get(FieldMessage),
	}
}

var strict = bluemonday.StrictPolicy()

func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Normalize trims every field and strips markup, keeping plain text only.
func (f Form) Normalize() Form {
	return Form{
		Name:    clean(f.Name),
		Email:   clean(f.Email),
		Phone:   clean(f.Phone),
		Service: clean(f.Service),
		Message: clean(f.Message),
	}
}

// Value returns the field by its posted name.
func (f Form) Value(field string) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldService:
		return f.Service
	case FieldMessage:
		return f.Message
	}
	return ""
}

// Validate checks required fields and the email address. It returns *ValidationError.
func (f Form) Validate() error {
	verr := &ValidationError{}
	for _, field := range RequiredFields {
		if strings.TrimSpace(f.Value(field)) == "" {
			verr.Missing = append(verr.Missing, field)
		}
	}
	if email := strings.TrimSpace(f.Email); email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			verr.Invalid = append(verr.Invalid, FieldEmail)
		}
	}
	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return verr
	}
	return nil
}

// ComposeMessage renders the chat message for a validated form.
func ComposeMessage(f Form) string {
	var b strings.Builder
	b.WriteString("🔔 *Pesan Baru dari Website Portfolio*\n\n")
	fmt.Fprintf(&b, "👤 *Nama:* %s\n", f.Name)
	fmt.Fprintf(&b, "📧 *Email:* %s\n", f.Email)
	fmt.Fprintf(&b, "📱 *Telepon:* %s\n", f.Phone)
	fmt.Fprintf(&b, "🛠️ *Layanan:* %s\n\n", f.Service)
	fmt.Fprintf(&b, "💬 *Pesan:*\n%s", f.Message)
	return b.String()
}
