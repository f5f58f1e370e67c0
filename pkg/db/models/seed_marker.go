package models

import "time"

// SeedMarker records that a named one-time seeding operation already ran. The
// primary key makes concurrent seeders lose cleanly on insert instead of
// double-writing sample data.
type SeedMarker struct {
	Key      string    `gorm:"column:key;primaryKey"`
	SeededAt time.Time `gorm:"column:seeded_at;autoCreateTime"`
}
