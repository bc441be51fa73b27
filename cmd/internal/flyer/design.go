package flyer

import (
	"fmt"
	"image/color"
	"strings"
)

// Design identifies one of the flyer variants.
type Design string

const (
	DesignModern   Design = "modern"
	DesignGolden   Design = "golden"
	DesignMinimal  Design = "minimal"
	DesignGradient Design = "gradient"
	DesignLuxury   Design = "luxury"
)

// Variant is a design with its display name.
type Variant struct {
	ID   Design `json:"id"`
	Name string `json:"name"`
}

// Variants lists every design in display order.
func Variants() []Variant {
	return []Variant{
		{ID: DesignModern, Name: "Bold Modern"},
		{ID: DesignGolden, Name: "Elegant Gold"},
		{ID: DesignMinimal, Name: "Clean Minimal"},
		{ID: DesignGradient, Name: "Royal Gradient"},
		{ID: DesignLuxury, Name: "Black & Gold"},
	}
}

// Valid reports whether d names a known design.
func (d Design) Valid() bool {
	_, ok := layoutFor(d)
	return ok
}

// ParseDesign accepts a design id case-insensitively.
func ParseDesign(s string) (Design, error) {
	d := Design(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDesign, s)
	}
	return d, nil
}

// layout is everything that differs between designs. Designs carry no behavior.
type layout struct {
	top, bottom color.RGBA // bottom differs from top for a vertical gradient
	accent      color.RGBA
	text        color.RGBA
	muted       color.RGBA

	headline   string
	guestLabel string
	whenLabel  string
	whereLabel string
	footer     string

	// border is drawn inset from the canvas edge when borderWidth > 0.
	borderWidth int
	// accentBar draws a solid band under the headline.
	accentBar bool

	qrPlate color.RGBA
	qrFrame color.RGBA // zero alpha means no frame
}

var (
	white     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	black     = color.RGBA{0x00, 0x00, 0x00, 0xff}
	gold      = color.RGBA{0xd4, 0xaf, 0x37, 0xff}
	paleGold  = color.RGBA{0xf5, 0xe6, 0xb3, 0xff}
	charcoal  = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	grey400   = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	grey600   = color.RGBA{0x4b, 0x55, 0x63, 0xff}
	indigo900 = color.RGBA{0x31, 0x2e, 0x81, 0xff}
	yellow400 = color.RGBA{0xfa, 0xcc, 0x15, 0xff}
	navy      = color.RGBA{0x0b, 0x12, 0x2b, 0xff}
	electric  = color.RGBA{0x38, 0xbd, 0xf8, 0xff}
)

func layoutFor(d Design) (layout, bool) {
	switch d {
	case DesignModern:
		return layout{
			top: navy, bottom: black,
			accent: electric, text: white, muted: grey400,
			headline: "YOU ARE INVITED", guestLabel: "Specially for",
			whenLabel: "Time", whereLabel: "Location",
			footer:    "Scan at the PCU desk required",
			accentBar: true,
			qrPlate:   white,
		}, true
	case DesignGolden:
		return layout{
			top: charcoal, bottom: black,
			accent: gold, text: white, muted: grey400,
			headline: "INVITATION", guestLabel: "Honored Guest",
			whenLabel: "When", whereLabel: "Join us at",
			footer:      "Present this code on arrival",
			borderWidth: 4,
			qrPlate:     white, qrFrame: gold,
		}, true
	case DesignMinimal:
		return layout{
			top: white, bottom: white,
			accent: black, text: black, muted: grey600,
			headline: "Service Invitation", guestLabel: "Guest",
			whenLabel: "When", whereLabel: "Where",
			footer:  "Show this at the door",
			qrPlate: white, qrFrame: black,
		}, true
	case DesignGradient:
		return layout{
			top: indigo900, bottom: black,
			accent: yellow400, text: white, muted: paleGold,
			headline: "EXCLUSIVE INVITE", guestLabel: "Welcome",
			whenLabel: "When", whereLabel: "Where",
			footer:  "Scan on arrival",
			qrPlate: white,
		}, true
	case DesignLuxury:
		return layout{
			top: black, bottom: black,
			accent: gold, text: white, muted: paleGold,
			headline: "INVITATION", guestLabel: "The City Needs You",
			whenLabel: "DATE & TIME", whereLabel: "VENUE",
			footer:      "Admit one",
			borderWidth: 4, accentBar: true,
			qrPlate: white, qrFrame: gold,
		}, true
	}
	return layout{}, false
}
