package domain

import "strings"

// Category is the closed set of labels the classifier can assign.
type Category string

const (
	CategoryInterested    Category = "Interested"
	CategoryMeetingBooked Category = "Meeting Booked"
	CategoryNotInterested Category = "Not Interested"
	CategorySpam          Category = "Spam"
	CategoryOutOfOffice   Category = "Out of Office"
	CategoryUncategorized Category = "Uncategorized"
)

// Categories returns every assignable category, Uncategorized last.
func Categories() []Category {
	return []Category{
		CategoryInterested,
		CategoryMeetingBooked,
		CategoryNotInterested,
		CategorySpam,
		CategoryOutOfOffice,
		CategoryUncategorized,
	}
}

// ParseCategory maps a free-form label to a Category. Unknown or empty
// labels resolve to CategoryUncategorized.
func ParseCategory(label string) Category {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "interested":
		return CategoryInterested
	case "meeting booked":
		return CategoryMeetingBooked
	case "not interested":
		return CategoryNotInterested
	case "spam":
		return CategorySpam
	case "out of office":
		return CategoryOutOfOffice
	default:
		return CategoryUncategorized
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryInterested, CategoryMeetingBooked, CategoryNotInterested,
		CategorySpam, CategoryOutOfOffice, CategoryUncategorized:
		return true
	}
	return false
}
