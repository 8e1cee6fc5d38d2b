package detect

import "github.com/harrison/shipshape/internal/models"

// AttributeDetector flags read-only and zero-byte files.
type AttributeDetector struct{}

func NewAttributeDetector() *AttributeDetector {
	return &AttributeDetector{}
}

func (d *AttributeDetector) Name() string { return "attributes" }

func (d *AttributeDetector) Detect(records []models.FileRecord) []models.Issue {
	var issues []models.Issue
	for i := range records {
		r := &records[i]
		if r.ReadOnly {
			issues = append(issues, models.Issue{
				Path:        r.Path,
				Kind:        models.KindReadOnly,
				Description: "file is read-only",
			})
		}
		if r.Size == 0 {
			issues = append(issues, models.Issue{
				Path:        r.Path,
				Kind:        models.KindZeroByte,
				Description: "file is empty",
			})
		}
	}
	return issues
}
