package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrScopeEmpty    = errors.New("scope requires an organization, project or application")
	ErrScopeMismatch = errors.New("scope organization does not match derived organization")
	ErrScopeNotFound = errors.New("scope reference not found")
)

// Scope identifies where an entity lives in the organization hierarchy.
// Setting ApplicationID derives ProjectID and OrgID; setting ProjectID
// derives OrgID. Explicitly supplied values must agree with the derived ones.
type Scope struct {
	OrgID         snowflake.ID
	ProjectID     snowflake.ID
	ApplicationID snowflake.ID
}

// ResolveScope walks application -> project -> organization and returns the
// fully derived scope. It is called at save time by every scoped entity.
func ResolveScope(ctx context.Context, repo Repository, s Scope) (Scope, error) {
	if s.ApplicationID != 0 {
		app, err := repo.GetApplication(ctx, s.ApplicationID)
		if err != nil {
			return Scope{}, err
		}
		if app == nil {
			return Scope{}, ErrScopeNotFound
		}
		if s.ProjectID != 0 && s.ProjectID != app.ProjectID {
			return Scope{}, ErrScopeMismatch
		}
		if s.OrgID != 0 && s.OrgID != app.OrgID {
			return Scope{}, ErrScopeMismatch
		}
		return Scope{OrgID: app.OrgID, ProjectID: app.ProjectID, ApplicationID: app.ID}, nil
	}

	if s.ProjectID != 0 {
		project, err := repo.GetProject(ctx, s.ProjectID)
		if err != nil {
			return Scope{}, err
		}
		if project == nil {
			return Scope{}, ErrScopeNotFound
		}
		if s.OrgID != 0 && s.OrgID != project.OrgID {
			return Scope{}, ErrScopeMismatch
		}
		return Scope{OrgID: project.OrgID, ProjectID: project.ID}, nil
	}

	if s.OrgID == 0 {
		return Scope{}, ErrScopeEmpty
	}
	return Scope{OrgID: s.OrgID}, nil
}
