package crm

import (
	"strconv"
	"strings"
	"time"
)

// DefaultNoteContext labels notes written by the booking flow.
const DefaultNoteContext = "Session booked via group checkout"

// MergeNote folds a new entry into an existing CRM note. Entries already
// present (case-insensitive substring) are not appended again; new
// entries join on their own line.
func MergeNote(existing, entry string) string {
	existing = strings.TrimSpace(existing)
	entry = strings.TrimSpace(entry)

	if entry == "" {
		return existing
	}
	if existing == "" {
		return entry
	}
	if strings.Contains(strings.ToLower(existing), strings.ToLower(entry)) {
		return existing
	}
	return existing + "\n" + entry
}

// ParentNoteEntry builds the pipe-delimited CRM note line for a parent.
type ParentNoteEntry struct {
	Context string
	Name    string
	Email   string
	Phone   string
}

func (e ParentNoteEntry) String() string {
	context := e.Context
	if context == "" {
		context = DefaultNoteContext
	}

	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = "N/A"
	}

	parts := []string{
		context,
		"Parent: " + name,
		"Email: " + strings.TrimSpace(e.Email),
	}
	if phone := strings.TrimSpace(e.Phone); phone != "" {
		parts = append(parts, "Phone: "+phone)
	}
	return strings.Join(parts, " | ")
}

// PlayerNoteEntry builds the pipe-delimited CRM note line for a player.
type PlayerNoteEntry struct {
	Context       string
	Name          string
	Age           int
	Birthday      *time.Time
	Team          string
	PreferredFoot string
	Notes         string
}

func (e PlayerNoteEntry) String() string {
	context := e.Context
	if context == "" {
		context = DefaultNoteContext
	}

	parts := []string{
		context,
		"Player: " + strings.TrimSpace(e.Name),
		"Age: " + strconv.Itoa(e.Age),
	}
	if e.Birthday != nil {
		parts = append(parts, "Birthday: "+e.Birthday.Format("2006-01-02"))
	}
	if team := strings.TrimSpace(e.Team); team != "" {
		parts = append(parts, "Team: "+team)
	}
	if foot := strings.TrimSpace(e.PreferredFoot); foot != "" {
		parts = append(parts, "Preferred foot: "+foot)
	}
	if notes := strings.TrimSpace(e.Notes); notes != "" {
		parts = append(parts, "Notes: "+notes)
	}
	return strings.Join(parts, " | ")
}
