// Package schedule builds the contact links offered once a buyer wants a visit or call.
// No external scheduling API is called.
package schedule

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/righthome-ai/property-copilot/internal/catalog"
	"github.com/righthome-ai/property-copilot/internal/model"
	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// Channels.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelCalendly = "calendly"
	ChannelCall     = "call"
)

// ErrUnknownChannel is returned for a channel other than whatsapp, calendly or call.
var ErrUnknownChannel = errors.New("unknown schedule channel")

// Links holds the contact endpoints.
type Links struct {
	WhatsAppNumber string
	CalendlyURL    string
	CallbackPhone  string
}

// Build returns the link for channel. listing may be nil.
func (l Links) Build(channel string, p requirement.Profile, listing *catalog.Listing) (*model.ScheduleResponse, error) {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case ChannelWhatsApp:
		text := whatsAppText(p, listing)
		return &model.ScheduleResponse{
			Channel: ChannelWhatsApp,
			URL:     "https://wa.me/" + digits(l.WhatsAppNumber) + "?text=" + url.QueryEscape(text),
			Message: "Tap the link to continue on WhatsApp. We've pre-filled your requirements.",
		}, nil
	case ChannelCalendly:
		return &model.ScheduleResponse{
			Channel: ChannelCalendly,
			URL:     l.CalendlyURL,
			Message: "Pick a slot that works for you and our property expert will confirm the visit.",
		}, nil
	case ChannelCall:
		return &model.ScheduleResponse{
			Channel: ChannelCall,
			URL:     "tel:" + l.CallbackPhone,
			Message: fmt.Sprintf("Call our property expert on %s, or wait for a call back shortly.", l.CallbackPhone),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
}

func whatsAppText(p requirement.Profile, listing *catalog.Listing) string {
	var b strings.Builder
	b.WriteString("Hi, I'd like to schedule a site visit")
	if listing != nil {
		fmt.Fprintf(&b, " for %s, %s", listing.Name, listing.Location)
	}
	b.WriteString(".")
	if summary := p.String(); summary != "" {
		b.WriteString(" My requirements: ")
		b.WriteString(summary)
		b.WriteString(".")
	}
	return b.String()
}

// digits strips everything but 0-9, the form wa.me expects.
func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
