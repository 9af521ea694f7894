// internal/form/compose.go
//
// Plain-text rendering of a submission for the support desk.  The same text
// goes into the server-side notifier and into the mail-link draft a client
// opens, so the support team sees one layout whichever path was used.
//
//------------------------------------------------------------------------------

package form

import (
	"strings"
)

const (
	greeting  = "Dear Krishna Cabs Support Team,"
	signature = "Best regards,\nKrishna Cabs Website"
	notGiven  = "Not specified"
)

// Compose builds the subject line and body for values using fd's mail
// layout.  Every declared field is listed with its label in declaration
// order; empty optional fields read "Not specified".
func Compose(fd *FormDef, values map[string]string) (subject, body string) {
	subject = fd.Mail.Subject
	if subject == "" {
		subject = fd.Title
	}
	if fd.Mail.SubjectField != "" {
		if v := strings.TrimSpace(values[fd.Mail.SubjectField]); v != "" {
			subject += " - " + v
		}
	}

	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")
	if fd.Mail.Intro != "" {
		b.WriteString(fd.Mail.Intro)
		b.WriteString("\n\n")
	}
	for _, f := range fd.Fields {
		v := strings.TrimSpace(values[f.Name])
		if v == "" {
			v = notGiven
		}
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	if fd.Mail.Closing != "" {
		b.WriteString("\n")
		b.WriteString(fd.Mail.Closing)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(signature)

	return subject, b.String()
}
