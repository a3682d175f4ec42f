package stripewebhook

import (
	"fmt"
	"html"
	"strings"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
)

type portalCredentials struct {
	Email    string
	Password string
	IsNew    bool
}

type sessionDetails struct {
	Title    string
	DateLine string
	TimeLine string
	Location string
}

func confirmationSubject(details sessionDetails) string {
	return fmt.Sprintf("You're booked: %s on %s", details.Title, details.DateLine)
}

// confirmationHTML is the parent-facing receipt. Portal credentials are
// included only for accounts created by this booking.
func confirmationHTML(signup *models.PlayerSignup, details sessionDetails, portal portalCredentials, baseURL string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #16a34a;">Booking Confirmed</h2>`)
	fmt.Fprintf(&b, `<p>%s is signed up for <strong>%s</strong>.</p>`,
		html.EscapeString(signup.FirstName+" "+signup.LastName), html.EscapeString(details.Title))

	b.WriteString(`<table style="border-collapse: collapse; width: 100%;">`)
	writeRow(&b, "Date", details.DateLine)
	writeRow(&b, "Time", details.TimeLine)
	if details.Location != "" {
		writeRow(&b, "Location", details.Location)
	}
	b.WriteString(`</table>`)

	if portal.IsNew && portal.Password != "" {
		b.WriteString(`<h3>Your Parent Portal</h3>`)
		b.WriteString(`<p>An account was created so you can see your bookings and player details.</p>`)
		b.WriteString(`<table style="border-collapse: collapse;">`)
		writeRow(&b, "Email", portal.Email)
		writeRow(&b, "Password", portal.Password)
		b.WriteString(`</table>`)
		fmt.Fprintf(&b, `<p><a href="%s/portal">Open the portal</a></p>`, baseURL)
	}

	b.WriteString(`<p>See you on the field!</p>`)
	b.WriteString(`</div>`)
	return b.String()
}

func ownerAlertSubject(signup *models.PlayerSignup, details sessionDetails) string {
	return fmt.Sprintf("New paid signup: %s %s for %s", signup.FirstName, signup.LastName, details.Title)
}

// ownerAlertHTML notifies the coach of a paid signup with the details
// needed to plan the session.
func ownerAlertHTML(signup *models.PlayerSignup, details sessionDetails) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2>New Paid Signup</h2>`)
	fmt.Fprintf(&b, `<p><strong>%s</strong> on %s, %s</p>`,
		html.EscapeString(details.Title), details.DateLine, details.TimeLine)

	b.WriteString(`<table style="border-collapse: collapse; width: 100%;">`)
	writeRow(&b, "Player", fmt.Sprintf("%s %s (age %d)", signup.FirstName, signup.LastName, signup.Age))
	if signup.Team != nil && *signup.Team != "" {
		writeRow(&b, "Team", *signup.Team)
	}
	if signup.PreferredFoot != nil && *signup.PreferredFoot != "" {
		writeRow(&b, "Preferred foot", *signup.PreferredFoot)
	}
	writeRow(&b, "Emergency contact", signup.EmergencyContact)
	writeRow(&b, "Contact email", signup.ContactEmail)
	if signup.ContactPhone != nil && *signup.ContactPhone != "" {
		writeRow(&b, "Contact phone", *signup.ContactPhone)
	}
	if signup.Notes != nil && *signup.Notes != "" {
		writeRow(&b, "Notes", *signup.Notes)
	}
	b.WriteString(`</table>`)
	b.WriteString(`</div>`)
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b,
		`<tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">%s</td><td style="padding: 4px 0;">%s</td></tr>`,
		html.EscapeString(label), html.EscapeString(value))
}
