package entities

import (
	"strings"
)

type Action int

const (
	ActionUnknown Action = iota
	ActionBook
	ActionCancel
)

const (
	BookToken   = "🆕 BOOKING"
	CancelToken = "🚫 CANCEL"
)

func (a Action) String() string {
	switch a {
	case ActionBook:
		return "book"
	case ActionCancel:
		return "cancel"
	}
	return "unknown"
}

func (a Action) Token() string {
	switch a {
	case ActionBook:
		return BookToken
	case ActionCancel:
		return CancelToken
	}
	return ""
}

// ParseAction recognises the dropdown tokens as well as hand-typed variants.
func ParseAction(text string) Action {
	t := strings.ToUpper(text)
	switch {
	case strings.Contains(t, "CANCEL"):
		return ActionCancel
	case strings.Contains(t, "BOOK"):
		return ActionBook
	}
	return ActionUnknown
}

// Request queue columns, 1-based.
const (
	RequestColumns      = 9
	RequestMarkerColumn = 9
)

// Request is one row of the request queue. Its identity is its position.
type Request struct {
	Row       int
	Action    Action
	RawAction string
	Date      string
	Time      string
	Court     string
	Name      string
	Phone     string
	Email     string
	Notes     string
	Marker    string
}

// RequestFromRow reads the queue cells ACTION, Date, Time, Court, Name, Phone,
// Email, Notes, BOOKING_STATUS.
func RequestFromRow(row int, cells []string) Request {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	return Request{
		Row:       row,
		RawAction: cell(0),
		Action:    ParseAction(cell(0)),
		Date:      cell(1),
		Time:      cell(2),
		Court:     cell(3),
		Name:      cell(4),
		Phone:     cell(5),
		Email:     cell(6),
		Notes:     cell(7),
		Marker:    cell(8),
	}
}

func (r Request) ToRow() []string {
	return []string{r.RawAction, r.Date, r.Time, r.Court, r.Name, r.Phone, r.Email, r.Notes, r.Marker}
}

// IsBlank reports a row nobody has filled in yet.
func (r Request) IsBlank() bool {
	return r.RawAction == "" && r.Date == "" && r.Time == "" && r.Court == "" && r.Name == ""
}

// IsDone reports whether the row already succeeded for its current action.
func (r Request) IsDone() bool {
	return IsDoneFor(r.Action, r.Marker)
}
