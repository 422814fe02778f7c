// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package notify

import "fmt"

// Status literals the public form submits. Anything else is rejected.
const (
	StatusAttending = "Joyfully Accepts"
	StatusDeclining = "Regretfully Declines"
)

// EventDetails is the static event information rendered into every
// confirmation.
type EventDetails struct {
	Title       string
	HostNames   string
	Date        string
	Time        string
	Venue       string
	DressCode   string
	LocationURL string
	FromName    string
	FromEmail   string
}

// content is one of the four subject/body variants, keyed on
// (attending, isUpdate).
type content struct {
	HeaderLabel       string
	Subject           string
	Subtitle          string
	MembersLabel      string
	Footer            string
	PlainHeader       string
	PlainMembersLabel string
}

func contentFor(event EventDetails, attending, isUpdate bool) content {
	c := content{
		HeaderLabel:       "RSVP Confirmed",
		PlainHeader:       "RSVP CONFIRMED",
		MembersLabel:      "Attendance",
		PlainMembersLabel: "ATTENDANCE:",
		Footer:            "We hope to see you soon!",
	}
	if isUpdate {
		c.HeaderLabel = "RSVP Updated"
		c.PlainHeader = "RSVP UPDATED"
	}
	c.Subject = fmt.Sprintf("%s - %s", c.HeaderLabel, event.Title)

	received := "Your RSVP for %s has been received."
	if isUpdate {
		received = "Your updated RSVP for %s has been received."
	}
	if attending {
		c.Subtitle = fmt.Sprintf(received+" We're so excited to celebrate with you!", event.Title)
		c.MembersLabel = "Guests Attending"
		c.PlainMembersLabel = "GUESTS ATTENDING:"
		c.Footer = "We can't wait to celebrate with you!"
	} else {
		c.Subtitle = fmt.Sprintf(received+" We'll miss you and hope to see you soon!", event.Title)
	}
	return c
}
