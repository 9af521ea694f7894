// internal/form/decode.go
//
// Typed views of the three enquiry shapes.  They are built from a validated
// Clean map only, so every field already satisfies its rules.

package form

import (
	"fmt"
	"time"
)

// ContactSubmission is a general enquiry from the contact page.
type ContactSubmission struct {
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	ServiceRequired string     `json:"serviceRequired"`
	TravelDate      *time.Time `json:"travelDate,omitempty"`
	TravelTime      string     `json:"travelTime,omitempty"`
	Message         string     `json:"message"`
}

// BookingSubmission is a ride request from the booking widget.
type BookingSubmission struct {
	ServiceType    string    `json:"serviceType"`
	VehicleType    string    `json:"vehicleType"`
	PickupLocation string    `json:"pickupLocation"`
	DropLocation   string    `json:"dropLocation"`
	Date           time.Time `json:"date"`
	Time           string    `json:"time"`
}

// FeedbackSubmission is a rating with free-text comments.
type FeedbackSubmission struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// Decode converts a valid Result into its typed submission.  Dates are read
// in loc, the validator clock's location (nil means UTC).  It returns an
// error for failed results and an ErrUnknownForm error for form IDs with no
// typed shape.
func Decode(res Result, loc *time.Location) (any, error) {
	if loc == nil {
		loc = time.UTC
	}
	if !res.Valid() || res.Clean == nil {
		return nil, ValidationError{FormID: res.FormID, Fields: res.Errors}
	}
	c := res.Clean

	switch res.FormID {
	case "contact":
		s := ContactSubmission{
			FirstName:       c["firstName"],
			LastName:        c["lastName"],
			Email:           c["email"],
			Phone:           c["phone"],
			ServiceRequired: c["serviceRequired"],
			TravelTime:      c["travelTime"],
			Message:         c["message"],
		}
		if d := c["travelDate"]; d != "" {
			t, err := time.ParseInLocation(DateLayout, d, loc)
			if err != nil {
				return nil, fmt.Errorf("travelDate: %w", err)
			}
			s.TravelDate = &t
		}
		return s, nil

	case "booking":
		t, err := time.ParseInLocation(DateLayout, c["date"], loc)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		return BookingSubmission{
			ServiceType:    c["serviceType"],
			VehicleType:    c["vehicleType"],
			PickupLocation: c["pickupLocation"],
			DropLocation:   c["dropLocation"],
			Date:           t,
			Time:           c["time"],
		}, nil

	case "feedback":
		var rating int
		if _, err := fmt.Sscanf(c["rating"], "%d", &rating); err != nil {
			return nil, fmt.Errorf("rating: %w", err)
		}
		return FeedbackSubmission{
			Name:     c["name"],
			Email:    c["email"],
			Rating:   rating,
			Feedback: c["feedback"],
		}, nil
	}
	return nil, fmt.Errorf("%w: %s has no typed shape", ErrUnknownForm, res.FormID)
}
