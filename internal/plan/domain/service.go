package domain

import (
	"context"
	"errors"
)

type Service interface {
	Get(ctx context.Context, id string) (*Response, error)
	GetByCode(ctx context.Context, code string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
}

type Response struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	MaxMembers   *int   `json:"max_members"`
	PriceMonthly *int64 `json:"price_monthly"`
	PriceYearly  *int64 `json:"price_yearly"`
	IsPublic     bool   `json:"is_public"`
	SortOrder    int    `json:"sort_order"`
}

var (
	ErrNotFound    = errors.New("plan_not_found")
	ErrInvalidID   = errors.New("invalid_plan_id")
	ErrInvalidCode = errors.New("invalid_plan_code")
)
