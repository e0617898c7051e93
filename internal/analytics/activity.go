package analytics

import (
	"sort"
	"time"

	"github.com/zaintech991/ReguLens/internal/storage/models"
)

const DefaultRecentLimit = 5

// RecentActivity merges documents and alerts into one feed, newest first.
// Documents are dated by publish date, falling back to creation time.
func RecentActivity(docs []models.Document, alerts []models.Alert, limit int) []models.Activity {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	activities := make([]models.Activity, 0, len(docs)+len(alerts))
	for _, doc := range docs {
		ts := doc.CreatedAt
		if published, err := time.Parse(models.DateLayout, doc.PublishedAt); err == nil {
			ts = published
		}
		activities = append(activities, models.Activity{
			Kind:      models.ActivityDocument,
			ID:        doc.ID,
			Title:     doc.Title,
			Detail:    doc.Category,
			Timestamp: ts,
		})
	}

	for _, alert := range alerts {
		activities = append(activities, models.Activity{
			Kind:      models.ActivityAlert,
			ID:        alert.AlertID,
			Title:     string(alert.Type),
			Detail:    alert.Message,
			Timestamp: alert.Timestamp,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})

	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}
