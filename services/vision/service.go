package visionsvc

import (
	"bytes"
	"encoding/base64"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core"
)

const (
	photoSize     = 512
	embeddingSize = 128
	jpegQuality   = 85
)

// service is a placeholder facial-recognition pipeline: it standardizes the
// photo and emits random embeddings in place of a real model. The face box
// is a fixed centered region rather than a detected one.
type service struct{}

var _ core.PhotoProcessor = (*service)(nil)

func NewService() core.PhotoProcessor {
	return &service{}
}

func (svc *service) Process(data []byte) (core.ProcessedPhoto, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return core.ProcessedPhoto{}, errors.Wrap(err, "decoding photo")
	}

	img = imaging.Resize(img, photoSize, photoSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return core.ProcessedPhoto{}, errors.Wrap(err, "encoding photo")
	}

	embeddings := make([]float64, embeddingSize)
	for i := range embeddings {
		embeddings[i] = rand.Float64()
	}

	return core.ProcessedPhoto{
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Embeddings:  embeddings,
		FaceBox: core.FaceBox{
			X: photoSize / 4,
			Y: photoSize / 4,
			W: photoSize / 2,
			H: photoSize / 2,
		},
	}, nil
}

type serviceMock struct {
	photo core.ProcessedPhoto
	err   error
}

var _ core.PhotoProcessor = (*serviceMock)(nil)

func NewServiceMock(photo core.ProcessedPhoto, err error) core.PhotoProcessor {
	return &serviceMock{photo: photo, err: err}
}

func (svc *serviceMock) Process(data []byte) (core.ProcessedPhoto, error) {
	return svc.photo, svc.err
}
