package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer renders notification intents into plain-text email and delivers
// them over SMTP. Used by the notify worker, never by the engine directly.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewMailer(host, port, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *Mailer) Send(intent Intent) error {
	subject, body := Render(intent)

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + intent.Contact,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{intent.Contact}, []byte(msg))
}

// Render produces the subject and body for an intent.
func Render(intent Intent) (subject, body string) {
	switch intent.Kind {
	case KindJoined:
		subject = fmt.Sprintf("You're in line at %s", intent.Restaurant)
		body = fmt.Sprintf(
			"Hi %s,\n\nYou've been added to the waitlist at %s.\n\nParty size: %d\nPosition in line: %d\nEstimated seating time: %s\n\nShow your QR code at the host stand when you arrive.\n\n- tableq",
			intent.Name, intent.Restaurant, intent.PartySize, intent.Position, intent.ETA,
		)
	case KindStatusChanged:
		subject = fmt.Sprintf("Waitlist update from %s", intent.Restaurant)
		switch intent.Status {
		case "Ready":
			body = fmt.Sprintf("Hi %s,\n\nYour table at %s is ready! Please head to the host stand.\n\n- tableq", intent.Name, intent.Restaurant)
		case "Seated":
			body = fmt.Sprintf("Hi %s,\n\nYou've been seated at %s. Enjoy your meal!\n\n- tableq", intent.Name, intent.Restaurant)
		case "Cancelled":
			body = fmt.Sprintf("Hi %s,\n\nYour waitlist entry at %s has been cancelled.\n\n- tableq", intent.Name, intent.Restaurant)
		default:
			body = fmt.Sprintf("Hi %s,\n\nYour waitlist status at %s is now %s. Position in line: %d.\n\n- tableq", intent.Name, intent.Restaurant, intent.Status, intent.Position)
		}
	default:
		subject = "tableq notification"
		body = fmt.Sprintf("Hi %s,\n\nThere's an update on your waitlist entry at %s.\n\n- tableq", intent.Name, intent.Restaurant)
	}
	return subject, body
}
