package app

import (
	"context"

	"yagt/internal/domain"
	"yagt/internal/usecase/game"
	"yagt/internal/usecase/library"
)

type GamesAPI struct {
	lib *library.Service
	sup *game.Supervisor
}

func NewGamesAPI(lib *library.Service, sup *game.Supervisor) *GamesAPI {
	return &GamesAPI{lib: lib, sup: sup}
}

func (a *GamesAPI) List() ([]domain.Game, error) {
	return a.lib.Games(context.Background())
}

func (a *GamesAPI) Add(g domain.Game) ([]domain.Game, error) {
	return a.lib.AddGame(context.Background(), g)
}

func (a *GamesAPI) Remove(name string) ([]domain.Game, error) {
	return a.lib.RemoveGame(context.Background(), name)
}

// Run launches a library game, tearing down any running one first.
func (a *GamesAPI) Run(name string) (domain.GameInfo, error) {
	ctx := context.Background()
	g, err := a.lib.Game(ctx, name)
	if err != nil {
		return domain.GameInfo{}, err
	}
	c, err := a.sup.Run(ctx, g)
	if err != nil {
		return domain.GameInfo{}, err
	}
	return c.Info(), nil
}

// InsertHook applies a hook code to the running game. Empty codes are ignored.
func (a *GamesAPI) InsertHook(code string) error {
	return a.sup.InsertHook(context.Background(), code)
}

func (a *GamesAPI) Stop() error {
	return a.sup.Stop(context.Background())
}

// Current returns the running game, or nil.
func (a *GamesAPI) Current() *domain.GameInfo {
	c := a.sup.Current()
	if c == nil {
		return nil
	}
	info := c.Info()
	return &info
}
