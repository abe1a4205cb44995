// -----------------------------------------------------------------------------
// Circle Model
// -----------------------------------------------------------------------------
// A circle is a vendor/exhibitor (artist or small press group) applying for
// booth space. Circles are the only entity persisted in the relational
// backend (`circles` table).
// -----------------------------------------------------------------------------

package models

// CircleStatus is the review state of a circle application.
type CircleStatus string

const (
	CircleStatusPending  CircleStatus = "pending"
	CircleStatusApproved CircleStatus = "approved"
	CircleStatusRejected CircleStatus = "rejected"
	CircleStatusWaitlist CircleStatus = "waitlist"
)

// Valid reports whether s is a known status.
func (s CircleStatus) Valid() bool {
	switch s {
	case CircleStatusPending, CircleStatusApproved, CircleStatusRejected, CircleStatusWaitlist:
		return true
	}
	return false
}

// Circle is a booth application.
type Circle struct {
	BaseModel
	Name            string       `json:"name" db:"name"`
	PenName         string       `json:"pen_name" db:"pen_name"`
	Email           string       `json:"email" db:"email"`
	Phone           string       `json:"phone" db:"phone"`
	Genre           string       `json:"genre" db:"genre"`
	Description     string       `json:"description" db:"description"`
	BoothPreference string       `json:"booth_preference" db:"booth_preference"`
	Status          CircleStatus `json:"status" db:"status"`
	ReviewNotes     string       `json:"review_notes,omitempty" db:"review_notes"`
	SampleURL       string       `json:"sample_url,omitempty" db:"sample_url"`
}

// CanReview reports whether the application can still change status.
// Approved and rejected circles are final; waitlisted ones can be reviewed again.
func (c *Circle) CanReview() bool {
	return c.Status == CircleStatusPending || c.Status == CircleStatusWaitlist
}
