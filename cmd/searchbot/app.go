package main

import (
	"fmt"

	"github.com/kalambet/searchbot/internal/backend"
	"github.com/kalambet/searchbot/internal/config"
	"github.com/kalambet/searchbot/internal/persist"
	"github.com/kalambet/searchbot/internal/profile"
	"github.com/kalambet/searchbot/internal/search"
	"github.com/kalambet/searchbot/internal/storage"
)

// app wires the core: storage, controllers, resolver, and the persistence
// coordinator subscribed to both controllers.
type app struct {
	cfg         config.Config
	store       *storage.Store
	searches    *search.Controller
	profiles    *profile.Controller
	coordinator *persist.Coordinator
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	resolver := search.NewResolver(backend.New(cfg.API.BaseURL), cfg.API.LiveSearchEnabled())
	searches := search.NewController(resolver, store)
	profiles := profile.NewController(store)

	coordinator := persist.New(store, searches, profiles)
	searches.Subscribe(coordinator.OnSearchEvent)
	profiles.Subscribe(coordinator.OnProfileEvent)

	if err := profiles.Hydrate(); err != nil {
		store.Close()
		return nil, err
	}
	if err := searches.HydrateHistory(); err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:         cfg,
		store:       store,
		searches:    searches,
		profiles:    profiles,
		coordinator: coordinator,
	}, nil
}

// Close drains pending persistence writes before closing storage.
func (a *app) Close() error {
	a.coordinator.Flush()
	return a.store.Close()
}
