package migration

import (
	channeldomain "github.com/smallbiznis/beacon/internal/channel/domain"
	"github.com/smallbiznis/beacon/internal/config"
	eventdomain "github.com/smallbiznis/beacon/internal/event/domain"
	messagedomain "github.com/smallbiznis/beacon/internal/message/domain"
	notificationdomain "github.com/smallbiznis/beacon/internal/notification/domain"
	occurrencedomain "github.com/smallbiznis/beacon/internal/occurrence/domain"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
	recipientdomain "github.com/smallbiznis/beacon/internal/recipient/domain"
	"github.com/smallbiznis/beacon/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev conveniences; gorm derives the
			// schema from the models there.
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultOrg(conn)
	}),
)

// AutoMigrate creates the schema from the domain models.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&orgdomain.Organization{},
		&orgdomain.Project{},
		&orgdomain.Application{},
		&channeldomain.Channel{},
		&eventdomain.Event{},
		&eventdomain.EventChannel{},
		&recipientdomain.User{},
		&recipientdomain.Address{},
		&recipientdomain.DistributionList{},
		&recipientdomain.Assignment{},
		&notificationdomain.Notification{},
		&messagedomain.Message{},
		&occurrencedomain.Occurrence{},
	)
}
