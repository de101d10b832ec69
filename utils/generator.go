package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"gorm.io/gorm"
)

const certificateSuffixLength = 10

// NewCertificateNumber builds a number of the form PREFIX-YYYY-XXXXXXXXXX from
// the issue year and random hex.
func NewCertificateNumber(prefix string, issuedAt time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%d-%s", strings.ToUpper(prefix), issuedAt.Year(), random[:certificateSuffixLength])
}

// GenerateUniqueCertificateNumber draws numbers until one is not yet taken.
// The unique index on certificate_sessions still guards concurrent issuers.
func GenerateUniqueCertificateNumber(tx *gorm.DB, prefix string, issuedAt time.Time) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		number := NewCertificateNumber(prefix, issuedAt)

		var count int64
		err := tx.Model(&models.CertificateSession{}).Where("certificate_number = ?", number).Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", errors.New("could not generate a unique certificate number")
}
