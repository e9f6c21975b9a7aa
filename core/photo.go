package core

// FaceBox is the detected face region within a processed photo.
type FaceBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// ProcessedPhoto is the result of running a student photo through the
// facial-recognition pipeline.
type ProcessedPhoto struct {
	ImageBase64 string
	Embeddings  []float64
	FaceBox     FaceBox
}

// PhotoProcessor is any service that can prepare a student photo for
// facial recognition.
type PhotoProcessor interface {
	Process(data []byte) (ProcessedPhoto, error)
}
