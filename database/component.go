package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kbukum/apphost/component"
	"github.com/kbukum/apphost/logger"
)

// Component opens one store on Start and closes it on Stop.
type Component struct {
	cfg    Config
	log    *logger.Logger
	driver DialectorFunc
	db     *DB
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{cfg: cfg, log: log.WithComponent(cfg.Name)}
}

// WithDriver replaces the dialector picked from Config.Driver.
func (c *Component) WithDriver(fn DialectorFunc) *Component {
	c.driver = fn
	return c
}

// DB is nil until Start succeeds.
func (c *Component) DB() *DB { return c.db }

func (c *Component) Name() string { return c.cfg.Name }

func (c *Component) dialector() (gorm.Dialector, error) {
	if c.driver != nil {
		return c.driver(c.cfg.DSN), nil
	}
	return Dialector(c.cfg)
}

func (c *Component) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	d, err := c.dialector()
	if err != nil {
		return err
	}
	if c.db, err = OpenWithDialector(ctx, d, c.cfg, c.log); err != nil {
		return err
	}
	return nil
}

func (c *Component) Stop(context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	switch {
	case c.db == nil || c.db.Closed():
		return component.Unhealthy(c.Name(), "store not open")
	case c.db.PingContext(ctx) != nil:
		return component.Unhealthy(c.Name(), "ping failed")
	}
	return component.Healthy(c.Name())
}

// Describe reads "sqlite main.db pool=1/1" or "postgres pool=10/5".
func (c *Component) Describe() component.Description {
	target := c.cfg.Driver
	if c.cfg.Driver == DriverSQLite {
		target += " " + c.cfg.DSN
	}
	return component.Description{
		Type:    "database",
		Details: fmt.Sprintf("%s pool=%d/%d", target, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns),
	}
}
