package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var certificateNumberPattern = regexp.MustCompile(`^INT-2025-[0-9A-F]{10}$`)

func TestNewCertificateNumber(t *testing.T) {
	issued := time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := NewCertificateNumber("int", issued)
		assert.Regexp(t, certificateNumberPattern, n)
		assert.False(t, seen[n])
		seen[n] = true
	}
}

func TestGenerateUniqueCertificateNumber(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CertificateSession{}))

	n, err := GenerateUniqueCertificateNumber(db, "INT", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Regexp(t, certificateNumberPattern, n)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareDocumentImages(t *testing.T) {
	doc, err := PrepareDocument(pngBytes(t, 3200, 800), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", doc.MIME)
	assert.Equal(t, ".jpg", doc.Extension)

	img, err := imaging.Decode(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())

	small, err := PrepareDocument(pngBytes(t, 40, 30), 0)
	require.NoError(t, err)
	img, err = imaging.Decode(bytes.NewReader(small.Data))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestPrepareDocumentPassesPDFThrough(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	doc, err := PrepareDocument(pdf, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.MIME)
	assert.Equal(t, ".pdf", doc.Extension)
	assert.Equal(t, pdf, doc.Data)
}

func TestPrepareDocumentRejects(t *testing.T) {
	_, err := PrepareDocument(nil, 0)
	assert.Error(t, err)
	_, err = PrepareDocument([]byte("plain text receipt"), 0)
	assert.Error(t, err)
	_, err = PrepareDocument(pngBytes(t, 10, 10), 16)
	assert.Error(t, err)
}
