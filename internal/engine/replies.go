package engine

import (
	"strings"

	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// Greeting opens every new session.
const Greeting = "Hi, I'm your property co-pilot. Looking for a home or investment? " +
	"I'll help you shortlist the best ones and book visits too."

const (
	replyAskBasics = "I'd be happy to help you find the perfect property. " +
		"Could you tell me which city you're interested in and your budget range?"
	replyReset          = "No problem, let's start over. "
	replyUnderstand     = "Great! I'd like to understand your requirements better. "
	replyFindingMatches = "Let me find some properties for you."
	replyFoundMatches   = "Based on your requirements, I've found some properties that might interest you. " +
		"Take a look at these options."
	replyOfferSchedule = "Great! Would you like to schedule a site visit or a call with our property expert " +
		"to discuss further?"
	replyAskObjection = "I understand. What specifically didn't work for you? " +
		"You can mention location, price, property type, or other preferences."
	replyMoreOptions      = "Would you like to see more options with different parameters?"
	replyScheduleChannels = "Perfect! How would you like to schedule?"
	replyScheduleAgain    = "Would you like to schedule a site visit to see the property in person, " +
		"or would you prefer a call with our property expert first?"
	replyAdjustLocation = "I'll adjust the location preferences. What area would you prefer instead?"
	replyAdjustBudget   = "I'll look for more options within your budget. Would you like to adjust your budget range?"
	replyAdjustType     = "What type of property would you prefer instead?"
	replyAdjustGeneric  = "I'll adjust my search based on your feedback. Let me find some better options for you."
	replyFollowUpNoted  = "Thank you for your interest! I've noted down your preferences"
	replyFollowUpAsk    = "Would you like me to send a summary of these properties to your email or WhatsApp?"
	replyClosing = "Thank you for using our service! We'll keep tracking better options based on your " +
		"preferences and alert you if prices change. Feel free to reach out if you have more questions."
	replyNoMatches = "I couldn't find properties matching all your criteria. Would you like to adjust your preferences?"
	replyFallback  = "Could you provide more details about your requirements?"
)

// Quick reply sets offered alongside replies.
var (
	StarterReplies     = []string{"I want to buy a flat in Gurgaon", "Looking for a 3BHK in Dubai under 2 Cr", "Show me top builder projects"}
	interestedReplies  = []string{"Schedule a site visit", "Book a call with expert", "Send me more options"}
	objectionReplies   = []string{"Location not ideal", "Price is too high", "Want different property type"}
	detailReplies      = []string{"Schedule visit", "Book a call", "Show similar properties"}
	moreOptionsReplies = []string{"Yes, show more options", "Adjust my preferences", "Start over"}
	channelReplies     = []string{"WhatsApp me the details", "Schedule via Calendly", "Call me now"}
	followUpReplies    = []string{"Send via WhatsApp", "Email me the details", "Both please"}
	noMatchReplies     = []string{"Adjust budget", "Change location", "Modify property type"}
)

// fieldPrompt asks for a single missing field.
func fieldPrompt(f requirement.Field, p requirement.Profile) string {
	switch f {
	case requirement.FieldCity:
		return "Which city are you looking to buy in? We operate in multiple locations including " +
			"Gurgaon, Mumbai, Bangalore, and Dubai."
	case requirement.FieldPurpose:
		return "Are you buying for personal use, investment, or commercial purposes?"
	case requirement.FieldBudget:
		unit := string(p.BudgetUnit)
		if unit == "" {
			unit = "Lakh/Crore"
		}
		return "What's your budget range for this property? (in " + unit + ")"
	case requirement.FieldBedrooms:
		return "How many bedrooms are you looking for?"
	case requirement.FieldType:
		return "What type of property are you interested in? (Apartment, Villa, Plot, etc.)"
	case requirement.FieldStatus:
		return "Do you prefer ready-to-move properties or under-construction projects?"
	default:
		return replyFallback
	}
}

func missingPrompt(missing []requirement.Field, p requirement.Profile) string {
	if len(missing) == 0 {
		return replyFallback
	}
	return fieldPrompt(missing[0], p)
}

// gapsNote tells the user which required fields would narrow early recommendations.
func gapsNote(missing []requirement.Field) string {
	if len(missing) == 0 {
		return ""
	}
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}
	var list string
	switch len(names) {
	case 1:
		list = names[0]
	default:
		list = strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
	return " Share your " + list + " and I'll narrow these down."
}

var cityBlurbs = map[string]string{
	"Gurgaon":   "Properties in Gurgaon offer excellent connectivity to Delhi, with good infrastructure and amenities.",
	"Mumbai":    "Mumbai properties are premium investments with high appreciation potential.",
	"Bangalore": "Bangalore offers a mix of modern apartments and villas with good tech infrastructure.",
	"Dubai":     "Dubai properties come with world-class amenities and tax-free benefits.",
}

func propertyDetails(p requirement.Profile) string {
	kind := "properties"
	if p.Type != "" {
		kind = p.Type.Plural()
	}
	city, ok := cityBlurbs[p.City]
	if !ok {
		city = "They are located in prime areas with good connectivity."
	}
	return "These " + kind + " offer premium amenities including 24/7 security, swimming pools, gyms, " +
		"and landscaped gardens. " + city + " Would you like to know more about a specific property?"
}
