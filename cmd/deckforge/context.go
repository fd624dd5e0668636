package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"deckforge/internal/config"
	"deckforge/internal/deck"
	"deckforge/internal/logging"
	"deckforge/internal/reconcile"
)

type commandContext struct {
	configFlag *string
	deckFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, deckFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		deckFlag:   deckFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) deckName() (string, error) {
	if c.deckFlag == nil || strings.TrimSpace(*c.deckFlag) == "" {
		return "", fmt.Errorf("deck name is required (use --deck)")
	}
	return strings.TrimSpace(*c.deckFlag), nil
}

// openStore opens the selected deck's store and aligns card statuses with
// the files on disk. Callers own the returned store and must close it.
func (c *commandContext) openStore() (*deck.Store, error) {
	store, err := c.openStoreRaw()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		store.Close()
		return nil, err
	}
	if _, err := reconcile.New(store, store.Paths(), logger).Reconcile(context.Background()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// openStoreRaw opens the store without the reconciliation pass. The reconcile
// command uses it so its printed summary reflects its own pass.
func (c *commandContext) openStoreRaw() (*deck.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	name, err := c.deckName()
	if err != nil {
		return nil, err
	}
	return deck.Open(cfg.Paths.LibraryDir, name)
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}
