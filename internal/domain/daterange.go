package domain

// DateLayout is the calendar-date form used everywhere a date crosses a
// boundary (query clauses, API responses).
const DateLayout = "2006-01-02"

// DateRange is an absolute calendar window derived from a recognized time
// phrase in a query. Both bounds are inclusive, formatted as YYYY-MM-DD.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
