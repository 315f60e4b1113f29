package tray

import (
	"github.com/getlantern/systray"
)

type Config struct {
	Title   string
	Tooltip string
	// OnQuit is invoked when the user picks Quit from the tray menu.
	OnQuit func()
}

type Icon struct {
	cfg Config
}

func New(cfg Config) *Icon {
	return &Icon{cfg: cfg}
}

// Run blocks inside the systray loop; callers run it on its own goroutine.
func (i *Icon) Run() {
	systray.Run(i.onReady, nil)
}

// Quit tears the tray icon down.
func (i *Icon) Quit() {
	systray.Quit()
}

func (i *Icon) onReady() {
	systray.SetIcon(iconPNG())
	systray.SetTitle(i.cfg.Title)
	systray.SetTooltip(i.cfg.Tooltip)

	mQuit := systray.AddMenuItem("Quit", "Quit snapask")
	go func() {
		<-mQuit.ClickedCh
		if i.cfg.OnQuit != nil {
			i.cfg.OnQuit()
		}
	}()
}
