package termrender

import (
	"fmt"
	"image"

	lru "github.com/hashicorp/golang-lru/v2"
	xdraw "golang.org/x/image/draw"
)

// ScaleFilter selects the interpolation used when scaling image pixels.
type ScaleFilter int

const (
	// ScaleFast is cheap bilinear scaling, good enough for animation frames.
	ScaleFast ScaleFilter = iota
	// ScaleSmooth is Catmull-Rom scaling for still images.
	ScaleSmooth
)

func (f ScaleFilter) scaler() xdraw.Scaler {
	if f == ScaleSmooth {
		return xdraw.CatmullRom
	}
	return xdraw.ApproxBiLinear
}

// scaleCacheSize bounds the number of scaled frames kept around; an animated
// source re-renders the same frames every loop.
const scaleCacheSize = 64

var scaleCache, _ = lru.New[string, *image.RGBA](scaleCacheSize)

// scaleImage scales src to w x h pixels. Results are cached per source
// frame, target size and filter.
func scaleImage(src image.Image, w, h int, filter ScaleFilter) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	key := fmt.Sprintf("%p/%v/%dx%d/%d", src, src.Bounds(), w, h, filter)
	if cached, ok := scaleCache.Get(key); ok {
		return cached
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	filter.scaler().Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	scaleCache.Add(key, dst)
	return dst
}
