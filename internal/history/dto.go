package history

import (
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
)

// HistoryList wraps a page of history entries plus the next page cursor.
type HistoryList struct {
	Entries    []models.HistoryEntry `json:"entries"`
	NextCursor string                `json:"nextCursor,omitempty"`
}
