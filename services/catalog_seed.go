package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogFile struct {
	Internships []catalogInternship `yaml:"internships"`
}

type catalogInternship struct {
	Title            string        `yaml:"title"`
	Description      string        `yaml:"description"`
	DurationDays     int           `yaml:"duration_days"`
	CertificatePrice string        `yaml:"certificate_price"`
	PassPercentage   float64       `yaml:"pass_percentage"`
	Active           *bool         `yaml:"active"`
	Tasks            []catalogTask `yaml:"tasks"`
}

type catalogTask struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Points         int    `yaml:"points"`
	SubmissionType string `yaml:"submission_type"`
	WaitTimeHours  int    `yaml:"wait_time_hours"`
	MaxAttempts    int    `yaml:"max_attempts"`
	Active         *bool  `yaml:"active"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// SeedFromFile imports internships and their tasks from a YAML file.
// Internships whose title already exists are left untouched.
func (s *CatalogService) SeedFromFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read catalog file: %w", err)
	}
	return s.Seed(ctx, raw)
}

func (s *CatalogService) Seed(ctx context.Context, raw []byte) (int, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, invalid("catalog file: %v", err)
	}

	created := 0
	for _, entry := range file.Internships {
		price := decimal.Zero
		if strings.TrimSpace(entry.CertificatePrice) != "" {
			p, err := decimal.NewFromString(entry.CertificatePrice)
			if err != nil {
				return created, invalid("internship %q: certificate price: %v", entry.Title, err)
			}
			price = p
		}

		internship := models.Internship{
			Title:            strings.TrimSpace(entry.Title),
			Description:      entry.Description,
			DurationDays:     entry.DurationDays,
			CertificatePrice: price,
			PassPercentage:   entry.PassPercentage,
			IsActive:         boolOr(entry.Active, true),
		}
		if err := validateInternship(internship); err != nil {
			return created, err
		}

		tasks := make([]models.Task, 0, len(entry.Tasks))
		for i, t := range entry.Tasks {
			maxAttempts := t.MaxAttempts
			if maxAttempts == 0 {
				maxAttempts = 3
			}
			task := models.Task{
				TaskNumber:     i + 1,
				Title:          strings.TrimSpace(t.Title),
				Description:    t.Description,
				Points:         t.Points,
				SubmissionType: models.SubmissionType(strings.ToUpper(t.SubmissionType)),
				WaitTimeHours:  t.WaitTimeHours,
				MaxAttempts:    maxAttempts,
				IsActive:       boolOr(t.Active, true),
			}
			if err := validateTask(task); err != nil {
				return created, fmt.Errorf("internship %q task %d: %w", entry.Title, i+1, err)
			}
			tasks = append(tasks, task)
		}

		inserted := false
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing models.Internship
			err := tx.Where("title = ?", internship.Title).First(&existing).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Omit(clause.Associations).Create(&internship).Error; err != nil {
				return err
			}
			for i := range tasks {
				tasks[i].InternshipID = internship.ID
				tasks[i].ID = uuid.Nil
			}
			if len(tasks) > 0 {
				if err := tx.Create(&tasks).Error; err != nil {
					return err
				}
			}
			inserted = true
			return nil
		})
		if err != nil {
			return created, fmt.Errorf("seed internship %q: %w", internship.Title, err)
		}
		if inserted {
			created++
			log.Printf("✅ Seeded internship %q with %d task(s)", internship.Title, len(tasks))
		}
	}
	return created, nil
}
