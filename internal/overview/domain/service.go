// Package domain defines the operator-facing platform overview: in-memory
// aggregation over community and plan rows for the admin dashboard.
package domain

import "context"

type Service interface {
	Get(ctx context.Context) (*Overview, error)
}

type Overview struct {
	TotalCommunities int        `json:"total_communities"`
	TotalMembers     int        `json:"total_members"`
	ActiveFullAccess int        `json:"active_full_access"`
	Plans            []PlanSlice `json:"plans"`
	NearCap          []CapAlert  `json:"near_cap"`
	AtCap            []CapAlert  `json:"at_cap"`
}

// PlanSlice is the per-plan breakdown.
type PlanSlice struct {
	PlanID      string `json:"plan_id"`
	PlanCode    string `json:"plan_code"`
	PlanName    string `json:"plan_name"`
	Communities int    `json:"communities"`
	Members     int    `json:"members"`
}

// CapAlert flags a community whose membership is close to or at its cap.
type CapAlert struct {
	CommunityID   string  `json:"community_id"`
	CommunityName string  `json:"community_name"`
	Current       int     `json:"current"`
	Max           int     `json:"max"`
	Utilization   float64 `json:"utilization"`
	HasFullAccess bool    `json:"has_full_access"`
}
