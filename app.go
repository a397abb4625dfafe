package main

import (
	"context"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"yagt/internal/bootstrap"
	"yagt/internal/domain"
)

const (
	overlayWidth  = 900
	overlayHeight = 240
)

// App owns the window and turns game lifecycle events into window changes.
type App struct {
	ctx context.Context
	c   *bootstrap.Container
}

func NewApp(c *bootstrap.Container) *App {
	return &App{c: c}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.c.Events.Set(windowEmitter{app: a, next: wailsEmitter{ctx: ctx}})
}

func (a *App) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.c.Close(ctx); err != nil {
		a.c.Log.Warnw("shutdown", "err", err)
	}
}

// Version is shown in the settings screen.
func (a *App) Version() string { return "yagt" }

func (a *App) showOverlay() {
	runtime.WindowSetAlwaysOnTop(a.ctx, true)
	runtime.WindowSetSize(a.ctx, overlayWidth, overlayHeight)
}

func (a *App) restoreMain() {
	runtime.WindowSetAlwaysOnTop(a.ctx, false)
	runtime.WindowSetSize(a.ctx, 1024, 768)
	runtime.WindowShow(a.ctx)
	runtime.WindowUnminimise(a.ctx)
}

type wailsEmitter struct{ ctx context.Context }

func (w wailsEmitter) Emit(name string, payload any) {
	runtime.EventsEmit(w.ctx, name, payload)
}

// windowEmitter reacts to lifecycle events before handing them to the UI.
type windowEmitter struct {
	app  *App
	next wailsEmitter
}

func (w windowEmitter) Emit(name string, payload any) {
	switch name {
	case domain.EventGameStarted:
		w.app.showOverlay()
	case domain.EventGameExited:
		w.app.restoreMain()
	}
	w.next.Emit(name, payload)
}
