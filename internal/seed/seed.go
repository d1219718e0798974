package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/smallbiznis/beacon/internal/channel/domain"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultOrgName     = "Main"
	defaultOrgSlug     = "main"
	defaultProjectName = "Default"
	defaultProjectSlug = "default"
	defaultChannelName = "console"
)

// EnsureDefaultOrg seeds the default organization, project and a console
// channel so a fresh install can trigger events immediately.
func EnsureDefaultOrg(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}
		if err := ensureProjectTx(ctx, tx, node, org.ID); err != nil {
			return err
		}
		return ensureChannelTx(ctx, tx, node, org.ID)
	})
}

func ensureOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = orgdomain.Organization{
		ID:   node.Generate(),
		Name: defaultOrgName,
		Slug: defaultOrgSlug,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureProjectTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var project orgdomain.Project
	err := tx.WithContext(ctx).
		Where("org_id = ? AND slug = ?", orgID, defaultProjectSlug).
		First(&project).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	project = orgdomain.Project{
		ID:    node.Generate(),
		OrgID: orgID,
		Name:  defaultProjectName,
		Slug:  defaultProjectSlug,
	}
	return tx.WithContext(ctx).Create(&project).Error
}

func ensureChannelTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var channel channeldomain.Channel
	err := tx.WithContext(ctx).
		Where("org_id = ? AND name = ?", orgID, defaultChannelName).
		First(&channel).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	channel = channeldomain.Channel{
		ID:         node.Generate(),
		OrgID:      orgID,
		Name:       defaultChannelName,
		Dispatcher: "log",
		Config:     datatypes.JSONMap{},
		Active:     true,
	}
	return tx.WithContext(ctx).Create(&channel).Error
}
