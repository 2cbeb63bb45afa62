package imageutil_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"face-swap-backend/internal/imageutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestNormalizePNG_Downscales(t *testing.T) {
	out, err := imageutil.NormalizePNG(jpegFixture(t, 2048, 1024), imageutil.DefaultMaxSide)
	require.NoError(t, err)

	info, err := imageutil.Probe(out)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 1024, info.Width)
	assert.Equal(t, 512, info.Height)
}

func TestNormalizePNG_KeepsSmallImages(t *testing.T) {
	out, err := imageutil.NormalizePNG(jpegFixture(t, 300, 200), imageutil.DefaultMaxSide)
	require.NoError(t, err)

	info, err := imageutil.Probe(out)
	require.NoError(t, err)
	assert.Equal(t, 300, info.Width)
	assert.Equal(t, 200, info.Height)
}

func TestProbe_RejectsGarbage(t *testing.T) {
	_, err := imageutil.Probe([]byte("not an image"))
	assert.Error(t, err)

	_, err = imageutil.NormalizePNG([]byte("not an image"), 1024)
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", imageutil.ContentType(".jpg"))
	assert.Equal(t, "image/jpeg", imageutil.ContentType(".jpeg"))
	assert.Equal(t, "image/png", imageutil.ContentType(".png"))
}
