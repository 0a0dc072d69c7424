package domain

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Category
	}{
		{"exact match", "Interested", CategoryInterested},
		{"lowercase", "interested", CategoryInterested},
		{"uppercase", "SPAM", CategorySpam},
		{"surrounding whitespace", "  Meeting Booked \n", CategoryMeetingBooked},
		{"not interested", "Not Interested", CategoryNotInterested},
		{"out of office", "out of office", CategoryOutOfOffice},
		{"unknown label", "Maybe Later", CategoryUncategorized},
		{"empty", "", CategoryUncategorized},
		{"model chatter", "Category: Interested", CategoryUncategorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCategory(tt.label); got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Category("Junk").Valid() {
		t.Error("unknown category should not be valid")
	}
	if Category("").Valid() {
		t.Error("empty category should not be valid")
	}
}

func TestEmailID(t *testing.T) {
	if got := EmailID("account_1", 42); got != "account_1_42" {
		t.Errorf("EmailID = %q, want %q", got, "account_1_42")
	}
	// Same inputs always produce the same id.
	if EmailID("account_1", 42) != EmailID("account_1", 42) {
		t.Error("EmailID should be deterministic")
	}
	if EmailID("account_1", 42) == EmailID("account_2", 42) {
		t.Error("different accounts must not collide")
	}
}
