package site

import "go-attend/internal/geo"

type CreateSiteRequest struct {
	Name         string      `json:"name" binding:"required"`
	CenterLat    float64     `json:"center_lat" binding:"required,min=-90,max=90"`
	CenterLng    float64     `json:"center_lng" binding:"required,min=-180,max=180"`
	RadiusMeters float64     `json:"radius_meters" binding:"omitempty,gt=0"`
	Polygon      []geo.Point `json:"polygon,omitempty"`
}

type UpdateSiteRequest struct {
	Name         string      `json:"name"`
	RadiusMeters *float64    `json:"radius_meters"`
	Polygon      []geo.Point `json:"polygon,omitempty"`
	IsActive     *bool       `json:"is_active"`
}

type SiteResponse struct {
	ID           string      `json:"id"`
	ProgramID    string      `json:"program_id"`
	Name         string      `json:"name"`
	CenterLat    float64     `json:"center_lat"`
	CenterLng    float64     `json:"center_lng"`
	RadiusMeters float64     `json:"radius_meters"`
	Polygon      []geo.Point `json:"polygon,omitempty"`
	IsActive     bool        `json:"is_active"`
}
