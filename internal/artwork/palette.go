package artwork

import (
	"image"
	"sort"

	"playback_lights/internal/models"

	"golang.org/x/image/draw"
)

const (
	sampleSize    = 64 // artwork is downscaled to sampleSize x sampleSize
	quantizeShift = 4  // 16 levels per channel
	minAlpha      = 128
	maxCandidates = 6
)

// Swatch names.
const (
	SwatchVibrant   = "vibrant"
	SwatchProminent = "prominent"
)

type bucket struct {
	count      int
	r, g, b    int // channel sums
	saturation float64
	lightness  float64
}

func (b *bucket) mean() (uint8, uint8, uint8) {
	return uint8(b.r / b.count), uint8(b.g / b.count), uint8(b.b / b.count)
}

// vibrancy favors saturated, mid-lightness colors with some population.
func (b *bucket) vibrancy(total int) float64 {
	pop := float64(b.count) / float64(total)
	mid := 1 - 2*abs(b.lightness-0.5)
	return b.saturation*0.6 + mid*0.25 + pop*0.15
}

// Rank returns up to maxCandidates colors: the most vibrant first, then the
// most prominent, then the rest by population. Transparent pixels are ignored.
func Rank(src image.Image) []models.ColorCandidate {
	if src == nil || src.Bounds().Empty() {
		return nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	buckets := make(map[uint32]*bucket)
	total := 0
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			c := dst.NRGBAAt(x, y)
			if c.A < minAlpha {
				continue
			}
			total++
			key := uint32(c.R>>quantizeShift)<<8 | uint32(c.G>>quantizeShift)<<4 | uint32(c.B>>quantizeShift)
			bk, ok := buckets[key]
			if !ok {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += int(c.R)
			bk.g += int(c.G)
			bk.b += int(c.B)
		}
	}
	if total == 0 {
		return nil
	}

	list := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		bk.saturation, bk.lightness = hsl(bk.mean())
		list = append(list, bk)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		ri, gi, bi := list[i].mean()
		rj, gj, bj := list[j].mean()
		return packRGB(ri, gi, bi) < packRGB(rj, gj, bj)
	})

	vibrant := list[0]
	for _, bk := range list[1:] {
		if bk.vibrancy(total) > vibrant.vibrancy(total) {
			vibrant = bk
		}
	}

	out := make([]models.ColorCandidate, 0, maxCandidates)
	out = append(out, candidate(SwatchVibrant, vibrant))
	for _, bk := range list {
		if len(out) == maxCandidates {
			break
		}
		if bk == vibrant {
			continue
		}
		name := ""
		if len(out) == 1 {
			name = SwatchProminent
		}
		out = append(out, candidate(name, bk))
	}
	return out
}

func candidate(name string, b *bucket) models.ColorCandidate {
	r, g, bl := b.mean()
	return models.ColorCandidate{Name: name, R: r, G: g, B: bl}
}

func packRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// hsl returns HSL saturation and lightness in [0,1].
func hsl(r, g, b uint8) (s, l float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	mx := max(rf, gf, bf)
	mn := min(rf, gf, bf)
	l = (mx + mn) / 2
	if mx == mn {
		return 0, l
	}
	d := mx - mn
	if l > 0.5 {
		s = d / (2 - mx - mn)
	} else {
		s = d / (mx + mn)
	}
	return s, l
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
