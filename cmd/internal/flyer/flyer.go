// Package flyer renders invitation flyers: a fixed-size PNG carrying the guest,
// campus and service time, plus a QR glyph of the verification payload.
//
// Rendering is pure. It performs no I/O and generates no identifiers; the
// caller supplies the final QR payload and gets the finished artifact back
// from a single call.
package flyer

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	// ErrUnknownDesign is returned for a design id outside the fixed set.
	ErrUnknownDesign = errors.New("unknown flyer design")
	// ErrRender wraps any rasterization or encoding failure.
	ErrRender = errors.New("flyer render failed")
)

// Logical canvas size. Output pixels are these times the scale.
const (
	CanvasWidth  = 300
	CanvasHeight = 500
)

// Placeholders drawn when an input field is empty.
const (
	PlaceholderGuest   = "Guest Name"
	PlaceholderCampus  = "TCN Campus"
	PlaceholderAddress = "Address Here"
	PlaceholderTime    = "9:00 AM"
	PlaceholderPayload = "sample"

	// PreviewPayload is encoded on design previews, before any token exists.
	PreviewPayload = "PREVIEW"
)

// CampusInfo is the venue part of a flyer.
type CampusInfo struct {
	Name    string
	Address string
}

// Input is everything a flyer shows. Campus may be nil.
type Input struct {
	GuestName string
	Campus    *CampusInfo
	Time      string
	QRPayload string
	Design    Design
}

// BlockKind names a text block on the flyer.
type BlockKind string

const (
	BlockHeadline BlockKind = "headline"
	BlockGuest    BlockKind = "guest"
	BlockCampus   BlockKind = "campus"
	BlockAddress  BlockKind = "address"
	BlockTime     BlockKind = "time"
	BlockFooter   BlockKind = "footer"
)

// Block is one text element, in drawing order.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

// Artifact is a rendered flyer.
type Artifact struct {
	Design    Design
	PNG       []byte
	Width     int
	Height    int
	Blocks    []Block
	QRPayload string
	// QRBounds is the QR glyph including its quiet zone, in output pixels.
	QRBounds image.Rectangle
}

// Text returns the text of the first block of kind k.
func (a Artifact) Text(k BlockKind) string {
	for _, b := range a.Blocks {
		if b.Kind == k {
			return b.Text
		}
	}
	return ""
}

// Renderer turns an Input into an Artifact.
type Renderer interface {
	Render(in Input) (Artifact, error)
}

// DefaultRenderer renders with fixed options.
type DefaultRenderer struct {
	Options []Option
}

// Render implements Renderer.
func (r DefaultRenderer) Render(in Input) (Artifact, error) { return Render(in, r.Options...) }

type config struct {
	scale int
}

// Option configures Render.
type Option func(*config) error

// WithScale sets the pixel multiplier (1..4). The default is 2.
func WithScale(n int) Option {
	return func(c *config) error {
		if n < 1 || n > 4 {
			return fmt.Errorf("flyer: scale %d out of range [1..4]", n)
		}
		c.scale = n
		return nil
	}
}

// Render draws in with its design and returns the PNG artifact.
func Render(in Input, opts ...Option) (Artifact, error) {
	cfg := config{scale: 2}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return Artifact{}, err
		}
	}

	l, ok := layoutFor(in.Design)
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownDesign, in.Design)
	}

	blocks := blocksFor(in, l)
	payload := in.QRPayload
	if payload == "" {
		payload = PlaceholderPayload
	}

	png, bounds, err := rasterize(l, blocks, payload, cfg.scale)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrRender, err)
	}

	return Artifact{
		Design:    in.Design,
		PNG:       png,
		Width:     CanvasWidth * cfg.scale,
		Height:    CanvasHeight * cfg.scale,
		Blocks:    blocks,
		QRPayload: payload,
		QRBounds:  bounds,
	}, nil
}

func blocksFor(in Input, l layout) []Block {
	campusName, address := PlaceholderCampus, PlaceholderAddress
	if in.Campus != nil {
		campusName = orPlaceholder(in.Campus.Name, PlaceholderCampus)
		address = orPlaceholder(in.Campus.Address, PlaceholderAddress)
	}

	return []Block{
		{Kind: BlockHeadline, Text: l.headline},
		{Kind: BlockGuest, Text: orPlaceholder(in.GuestName, PlaceholderGuest)},
		{Kind: BlockCampus, Text: campusName},
		{Kind: BlockAddress, Text: address},
		{Kind: BlockTime, Text: orPlaceholder(in.Time, PlaceholderTime)},
		{Kind: BlockFooter, Text: l.footer},
	}
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
