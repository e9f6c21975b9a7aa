package visionsvc_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"

	visionsvc "github.com/shikshaconnect/shiksha/services/vision"
)

func testPhoto(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test photo: %v", err)
	}
	return buf.Bytes()
}

func Test_Service_Process(t *testing.T) {
	svc := visionsvc.NewService()

	photo, err := svc.Process(testPhoto(t, 640, 480))
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	// output is a 512x512 JPEG, base64-encoded
	raw, err := base64.StdEncoding.DecodeString(photo.ImageBase64)
	if err != nil {
		t.Fatalf("decoding image: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decoding processed image: %v", err)
	}
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 512, 512), img.Bounds())

	assert.Len(t, photo.Embeddings, 128)
	for _, v := range photo.Embeddings {
		assert.True(t, v >= 0 && v < 1)
	}

	// the face box is the fixed centered region
	assert.Equal(t, 128, photo.FaceBox.X)
	assert.Equal(t, 128, photo.FaceBox.Y)
	assert.Equal(t, 256, photo.FaceBox.W)
	assert.Equal(t, 256, photo.FaceBox.H)
}

func Test_Service_Process_invalidImage(t *testing.T) {
	svc := visionsvc.NewService()

	_, err := svc.Process([]byte("definitely not an image"))
	assert.Error(t, err)
}
