// -----------------------------------------------------------------------------
// Ticket Validation Model
// -----------------------------------------------------------------------------
// One gate scan attempt. Validations are append-only: a record is written for
// every scan, accepted or rejected, and never mutated afterwards.
// -----------------------------------------------------------------------------

package models

import "time"

// ValidationType is the kind of gate scan.
type ValidationType string

const (
	ValidationTypeEntry      ValidationType = "entry"
	ValidationTypeExit       ValidationType = "exit"
	ValidationTypeAreaAccess ValidationType = "area_access"
)

// Valid reports whether t is a known scan type.
func (t ValidationType) Valid() bool {
	switch t {
	case ValidationTypeEntry, ValidationTypeExit, ValidationTypeAreaAccess:
		return true
	}
	return false
}

// Rejection reasons recorded on failed validations.
const (
	ReasonNotFound      = "Ticket not found"
	ReasonNotPaid       = "Payment not confirmed"
	ReasonAlreadyUsed   = "Ticket already used"
	ReasonOutsideWindow = "Ticket not valid for current date/time"
	ReasonNotEntered    = "Ticket has not entered the venue"
)

// TicketValidation is one scan attempt.
type TicketValidation struct {
	ID             string         `json:"id"`
	TicketID       string         `json:"ticket_id,omitempty"`
	QRCode         string         `json:"qr_code"`
	ValidationType ValidationType `json:"validation_type"`
	GateID         string         `json:"gate_id"`
	StaffID        string         `json:"staff_id"`
	Timestamp      time.Time      `json:"timestamp"`
	IsValid        bool           `json:"is_valid"`
	ErrorReason    string         `json:"error_reason,omitempty"`
}

// AdmissionCheck returns the rejection reason for scanning p with scan type
// vt at now, or "" when the scan is accepted.
//
// entry:       paid, unused, inside the validity window
// exit:        paid, already entered
// area_access: paid, already entered, inside the validity window
func (p *TicketPurchase) AdmissionCheck(vt ValidationType, now time.Time) string {
	if !p.IsPaid() {
		return ReasonNotPaid
	}

	switch vt {
	case ValidationTypeExit:
		if !p.IsUsed {
			return ReasonNotEntered
		}
		return ""
	case ValidationTypeAreaAccess:
		if !p.IsUsed {
			return ReasonNotEntered
		}
	default:
		if p.IsUsed {
			return ReasonAlreadyUsed
		}
	}

	if !p.IsWithinValidity(now) {
		return ReasonOutsideWindow
	}
	return ""
}
