// internal/domain/models/calendar.go
package models

// Calendar is the academic calendar table shown on the board.
type Calendar struct {
	Year      int        `yaml:"year" json:"year"`
	Title     string     `yaml:"title" json:"title"`
	Semesters []Semester `yaml:"semesters" json:"semesters"`
}

// Semester groups calendar rows under a heading such as "Spring".
type Semester struct {
	Name   string          `yaml:"name" json:"name"`
	Events []CalendarEvent `yaml:"events" json:"events"`
}

// CalendarEvent is one row of the table. Start and End are YYYY-MM-DD;
// End is empty for single-day events.
type CalendarEvent struct {
	Start    string `yaml:"start" json:"start"`
	End      string `yaml:"end,omitempty" json:"end,omitempty"`
	Title    string `yaml:"title" json:"title"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
}
