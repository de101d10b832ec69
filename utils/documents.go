package utils

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

const maxProofDimension = 1600

var allowedProofTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Document is an uploaded file after content sniffing.
type Document struct {
	Data      []byte
	MIME      string
	Extension string
}

// PrepareDocument checks the real content type of an upload. JPEG and PNG
// images are downscaled and re-encoded as JPEG; PDFs and WebP pass through.
func PrepareDocument(data []byte, maxBytes int64) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file is larger than %d bytes", maxBytes)
	}

	mt := mimetype.Detect(data)
	var ext string
	for allowed, e := range allowedProofTypes {
		if mt.Is(allowed) {
			ext = e
			break
		}
	}
	if ext == "" {
		return nil, fmt.Errorf("file type %s is not allowed", mt.String())
	}

	doc := &Document{Data: data, MIME: mt.String(), Extension: ext}
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		return doc, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > maxProofDimension || b.Dy() > maxProofDimension {
		img = imaging.Fit(img, maxProofDimension, maxProofDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}
	return &Document{Data: buf.Bytes(), MIME: "image/jpeg", Extension: ".jpg"}, nil
}
