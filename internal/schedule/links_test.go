package schedule

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/righthome-ai/property-copilot/internal/catalog"
	"github.com/righthome-ai/property-copilot/internal/requirement"
)

var links = Links{
	WhatsAppNumber: "+91 98765-43210",
	CalendlyURL:    "https://calendly.com/acme/visit",
	CallbackPhone:  "+919876543210",
}

func TestBuild_WhatsApp(t *testing.T) {
	beds := requirement.BedroomCount(3)
	p := requirement.Profile{
		City:     "Gurgaon",
		Currency: requirement.CurrencyINR,
		Budget:   1.5e7,
		Bedrooms: &beds,
	}
	listing := &catalog.Listing{Name: "DLF The Crest", Location: "Sector 54, Gurgaon"}

	resp, err := links.Build("WhatsApp", p, listing)
	require.NoError(t, err)

	assert.Equal(t, ChannelWhatsApp, resp.Channel)
	require.True(t, strings.HasPrefix(resp.URL, "https://wa.me/919876543210?text="))

	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	text := u.Query().Get("text")
	assert.Contains(t, text, "DLF The Crest, Sector 54, Gurgaon")
	assert.Contains(t, text, "City: Gurgaon")
	assert.Contains(t, text, "Budget Range: ₹1.5 Cr")
	assert.Contains(t, text, "Bedrooms: 3 BHK")
}

func TestBuild_WhatsAppWithoutListingOrProfile(t *testing.T) {
	resp, err := links.Build(ChannelWhatsApp, requirement.Profile{}, nil)
	require.NoError(t, err)

	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	assert.Equal(t, "Hi, I'd like to schedule a site visit.", u.Query().Get("text"))
}

func TestBuild_OtherChannels(t *testing.T) {
	resp, err := links.Build(ChannelCalendly, requirement.Profile{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://calendly.com/acme/visit", resp.URL)

	resp, err = links.Build(" call ", requirement.Profile{}, nil)
	require.NoError(t, err)
	assert.Equal(t, ChannelCall, resp.Channel)
	assert.Equal(t, "tel:+919876543210", resp.URL)
	assert.Contains(t, resp.Message, "+919876543210")
}

func TestBuild_UnknownChannel(t *testing.T) {
	_, err := links.Build("email", requirement.Profile{}, nil)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}
