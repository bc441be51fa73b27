package flyer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"unicode/utf8"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	margin     = 20
	glyphW     = 7
	glyphH     = 13
	glyphAsc   = 11
	qrPlateTop = 300
	qrPlate    = 150
	qrArea     = 140
	footerTop  = 464
	textBottom = qrPlateTop - 8
)

var face = basicfont.Face7x13

// rasterize draws the flyer and returns PNG bytes and the QR glyph bounds in output pixels.
func rasterize(l layout, blocks []Block, payload string, scale int) ([]byte, image.Rectangle, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	logical := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	fillGradient(logical, l.top, l.bottom)

	if l.borderWidth > 0 {
		strokeRect(logical, image.Rect(10, 10, CanvasWidth-10, CanvasHeight-10), l.borderWidth, l.accent)
	}

	text := func(k BlockKind) string {
		for _, b := range blocks {
			if b.Kind == k {
				return b.Text
			}
		}
		return ""
	}

	y := 30
	y = drawCentered(logical, []string{text(BlockHeadline)}, y, 2, l.accent)
	if l.accentBar {
		fillRect(logical, image.Rect(110, y+2, CanvasWidth-110, y+5), l.accent)
		y += 6
	}

	y += 12
	y = drawCentered(logical, []string{l.guestLabel}, y, 1, l.muted)
	y = drawCentered(logical, limit(wrap(text(BlockGuest), maxChars(2)), 2), y+2, 2, l.text)

	y += 10
	y = drawCentered(logical, []string{l.whereLabel}, y, 1, l.muted)
	y = drawCentered(logical, limit(wrap(text(BlockCampus), maxChars(1)), 2), y+2, 1, l.text)
	y = drawCentered(logical, limit(wrap(text(BlockAddress), maxChars(1)), 2), y+2, 1, l.muted)

	y += 10
	y = drawCentered(logical, []string{l.whenLabel}, y, 1, l.muted)
	if y+2+glyphH*2 <= textBottom {
		drawCentered(logical, []string{text(BlockTime)}, y+2, 2, l.accent)
	} else {
		drawCentered(logical, []string{text(BlockTime)}, y+2, 1, l.accent)
	}

	plate := image.Rect((CanvasWidth-qrPlate)/2, qrPlateTop, (CanvasWidth+qrPlate)/2, qrPlateTop+qrPlate)
	fillRect(logical, plate, l.qrPlate)
	if l.qrFrame.A != 0 {
		strokeRect(logical, plate.Inset(-3), 3, l.qrFrame)
	}

	drawCentered(logical, []string{text(BlockFooter)}, footerTop, 1, l.muted)

	out := image.NewRGBA(image.Rect(0, 0, CanvasWidth*scale, CanvasHeight*scale))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), logical, logical.Bounds(), xdraw.Src, nil)

	bounds, err := drawQR(out, q, scaleRect(plate, scale), qrArea*scale)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, image.Rectangle{}, err
	}
	return buf.Bytes(), bounds, nil
}

// drawQR paints q's modules centered in plate using whole-pixel modules no larger than area.
func drawQR(dst *image.RGBA, q *qrcode.QRCode, plate image.Rectangle, area int) (image.Rectangle, error) {
	bm := q.Bitmap()
	n := len(bm)
	module := area / n
	if module < 1 {
		return image.Rectangle{}, errors.New("qr payload too large for flyer")
	}

	size := module * n
	origin := image.Pt(
		plate.Min.X+(plate.Dx()-size)/2,
		plate.Min.Y+(plate.Dy()-size)/2,
	)
	bounds := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size, size))}

	fillRect(dst, bounds, white)
	for r, row := range bm {
		for c, dark := range row {
			if !dark {
				continue
			}
			x := origin.X + c*module
			y := origin.Y + r*module
			fillRect(dst, image.Rect(x, y, x+module, y+module), black)
		}
	}
	return bounds, nil
}

// drawCentered draws each line centered at size and returns the y below the last line.
func drawCentered(dst *image.RGBA, lines []string, top, size int, col color.RGBA) int {
	for _, line := range lines {
		if line == "" {
			continue
		}
		w := font.MeasureString(face, line).Ceil() * size
		x := (CanvasWidth - w) / 2
		if x < margin/2 {
			x = margin / 2
		}
		drawText(dst, line, x, top, size, col)
		top += glyphH*size + 2
	}
	return top
}

func drawText(dst *image.RGBA, s string, x, top, size int, col color.RGBA) {
	w := font.MeasureString(face, s).Ceil()
	if w <= 0 {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, w, glyphH))
	d := font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, glyphAsc),
	}
	d.DrawString(s)

	r := image.Rect(x, top, x+w*size, top+glyphH*size)
	xdraw.NearestNeighbor.Scale(dst, r, tmp, tmp.Bounds(), xdraw.Over, nil)
}

func fillGradient(dst *image.RGBA, top, bottom color.RGBA) {
	h := dst.Bounds().Dy()
	for y := 0; y < h; y++ {
		c := lerp(top, bottom, y, h-1)
		fillRect(dst, image.Rect(0, y, dst.Bounds().Dx(), y+1), c)
	}
}

func lerp(a, b color.RGBA, i, n int) color.RGBA {
	if n <= 0 || a == b {
		return a
	}
	mix := func(x, y uint8) uint8 { return uint8((int(x)*(n-i) + int(y)*i) / n) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	xdraw.Draw(dst, r, image.NewUniform(c), image.Point{}, xdraw.Src)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, w int, c color.RGBA) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func scaleRect(r image.Rectangle, s int) image.Rectangle {
	return image.Rect(r.Min.X*s, r.Min.Y*s, r.Max.X*s, r.Max.Y*s)
}

func maxChars(size int) int { return (CanvasWidth - 2*margin) / (glyphW * size) }

// wrap breaks s into lines of at most n runes, on spaces where possible.
func wrap(s string, n int) []string {
	var (
		lines []string
		cur   string
	)
	for _, word := range strings.Fields(s) {
		for utf8.RuneCountInString(word) > n {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			r := []rune(word)
			lines = append(lines, string(r[:n]))
			word = string(r[n:])
		}
		switch {
		case cur == "":
			cur = word
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= n:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// limit keeps at most n lines, marking a cut with a trailing "...".
func limit(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	out := append([]string(nil), lines[:n]...)
	last := []rune(out[n-1])
	if len(last) > 3 {
		last = last[:len(last)-3]
	}
	out[n-1] = string(last) + "..."
	return out
}
