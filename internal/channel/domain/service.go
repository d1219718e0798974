package domain

import (
	"context"

	"gorm.io/datatypes"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Channel, error)
	Get(ctx context.Context, id string) (*Channel, error)
	SetLocked(ctx context.Context, id string, locked bool) (*Channel, error)
	SetActive(ctx context.Context, id string, active bool) (*Channel, error)
}

type CreateRequest struct {
	OrgID         string            `json:"org_id"`
	ApplicationID string            `json:"application_id"`
	Name          string            `json:"name"`
	Dispatcher    string            `json:"dispatcher"`
	Config        datatypes.JSONMap `json:"config"`
}
