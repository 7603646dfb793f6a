package docpdf

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// Standard paper sizes.
var (
	A3      = PageSize{Width: 29.7, Height: 42.0}
	A4      = PageSize{Width: 21.0, Height: 29.7}
	A5      = PageSize{Width: 14.8, Height: 21.0}
	Letter  = PageSize{Width: 21.59, Height: 27.94}
	Legal   = PageSize{Width: 21.59, Height: 35.56}
	Tabloid = PageSize{Width: 27.94, Height: 43.18}
)

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// Margin represents content margins in centimeters.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margin{Top: cm, Right: cm, Bottom: cm, Left: cm}
}

// PageConfig fixes the page geometry used for layout, rasterization, and
// PDF assembly. The same geometry is shared by all pages of a job so that
// a consistent pixel-to-physical-unit mapping exists for every page.
//
// A nil PageConfig or zero-value fields will use sensible defaults:
// A4 paper, portrait orientation, 1 cm margins, 96 DPI.
type PageConfig struct {
	// Size specifies the paper size. Defaults to A4.
	Size PageSize

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation

	// Margin specifies content margins in centimeters. Defaults to 1 cm
	// on all sides. Flowing backends apply horizontal margins as a
	// content inset; already-paginated backends keep the source margins.
	Margin Margin

	// DPI is the logical resolution used to map the physical page size
	// to layout pixels. Defaults to 96 (CSS reference pixel density).
	// Raster sharpness is controlled separately by the converter's
	// scale factor, not by DPI.
	DPI float64
}

// DefaultPageConfig returns a PageConfig with sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:        A4,
		Orientation: Portrait,
		Margin:      UniformMargin(1.0),
		DPI:         96,
	}
}

// resolved returns a PageConfig with all zero values replaced by defaults.
func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Size == (PageSize{}) {
		r.Size = d.Size
	}
	if r.DPI <= 0 {
		r.DPI = d.DPI
	}
	if r.Margin == (Margin{}) {
		r.Margin = d.Margin
	}
	return r
}

// cmToInches converts centimeters to inches.
func cmToInches(cm float64) float64 {
	return cm / 2.54
}

// paperInches returns the paper width and height in inches,
// accounting for orientation.
func (p *PageConfig) paperInches() (width, height float64) {
	r := p.resolved()
	w := cmToInches(r.Size.Width)
	h := cmToInches(r.Size.Height)
	if r.Orientation == Landscape {
		return h, w
	}
	return w, h
}

// pixelSize returns the page dimensions in whole layout pixels at the
// configured DPI. This is the container geometry handed to renderers.
func (p *PageConfig) pixelSize() (width, height int) {
	r := p.resolved()
	w, h := p.paperInches()
	return int(w*r.DPI + 0.5), int(h*r.DPI + 0.5)
}

// pointSize returns the page dimensions in PDF points (1/72 inch).
func (p *PageConfig) pointSize() (width, height float64) {
	w, h := p.paperInches()
	return w * 72, h * 72
}

// marginPixels returns the content margins in whole layout pixels.
func (p *PageConfig) marginPixels() (top, right, bottom, left int) {
	r := p.resolved()
	px := func(cm float64) int { return int(cmToInches(cm)*r.DPI + 0.5) }
	return px(r.Margin.Top), px(r.Margin.Right), px(r.Margin.Bottom), px(r.Margin.Left)
}
