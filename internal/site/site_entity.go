package site

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-attend/internal/geo"
)

// TrainingSite is an authorized location a participant may accrue hours at.
// Sites are long-lived and immutable while a session is open against them.
type TrainingSite struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProgramID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name         string         `gorm:"type:varchar(150);not null"`
	CenterLat    float64        `gorm:"not null"`
	CenterLng    float64        `gorm:"not null"`
	RadiusMeters float64        `gorm:"not null;default:150"`
	PolygonJSON  *string        `gorm:"column:polygon;type:jsonb"`
	IsActive     bool           `gorm:"not null;default:true"`
	CreatedAt    time.Time      `gorm:"not null;default:now()"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (TrainingSite) TableName() string {
	return "training_sites"
}

// Boundary converts the stored geometry into an evaluatable geofence. An
// unparsable polygon falls back to the circle rather than failing the site.
func (s *TrainingSite) Boundary() geo.Boundary {
	b := geo.Boundary{
		Center:       geo.Point{Latitude: s.CenterLat, Longitude: s.CenterLng},
		RadiusMeters: s.RadiusMeters,
	}
	if s.PolygonJSON != nil && *s.PolygonJSON != "" {
		var polygon []geo.Point
		if err := json.Unmarshal([]byte(*s.PolygonJSON), &polygon); err == nil && len(polygon) >= 3 {
			b.Polygon = polygon
		}
	}
	return b
}
