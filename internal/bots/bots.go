package bots

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Controller is the in-process stand-in for the bot/AI subsystem. The round
// lifecycle fires one reset per setup; the real AI driver polls Generation
// and rebuilds its population when it changes.
type Controller struct {
	gen atomic.Uint64
	log *zap.Logger
}

func NewController(log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{log: log}
}

func (c *Controller) ResetSignal() {
	gen := c.gen.Add(1)
	c.log.Info("bot reset signaled", zap.Uint64("generation", gen))
}

func (c *Controller) Generation() uint64 { return c.gen.Load() }
