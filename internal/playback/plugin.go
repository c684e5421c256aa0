package playback

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/Spice/internal/mediasurface"
	"github.com/dixieflatline76/Spice/pkg/ui"
	"github.com/dixieflatline76/Spice/pkg/ui/setting"
)

const pluginName = "Video Wallpaper"

// videoPlugin adapts a Controller to the tray-menu/preferences plugin
// surface the rest of the application registers against.
type videoPlugin struct {
	manager ui.PluginManager
	ctl     *Controller
}

// LoadPlugin builds the video wallpaper plugin around the process-wide
// Controller and registers it with the given plugin manager.
func LoadPlugin(manager ui.PluginManager) {
	vp := &videoPlugin{ctl: Get()}
	manager.Register(vp)
}

// Init injects the plugin manager, mirroring wallpaperPlugin's Init.
func (vp *videoPlugin) Init(manager ui.PluginManager) {
	vp.manager = manager
}

// Name returns the plugin's name.
func (vp *videoPlugin) Name() string {
	return pluginName
}

// Activate attempts to restore a previously active video wallpaper, if
// any was persisted from a prior run.
func (vp *videoPlugin) Activate() {
	go func() {
		if err := vp.ctl.RestoreOnStartup(context.Background()); err != nil {
			vp.manager.NotifyUser(pluginName, "Could not restore video wallpaper")
		}
	}()
}

// Deactivate stops the side-car without clearing the persisted record, so
// a later Activate (app restart) still restores it.
func (vp *videoPlugin) Deactivate() {
	vp.ctl.sc.Stop()
	vp.ctl.stopHeartbeat()
}

// CreateTrayMenuItems returns the tray menu entries for this plugin.
func (vp *videoPlugin) CreateTrayMenuItems() []*fyne.MenuItem {
	items := []*fyne.MenuItem{}
	items = append(items, vp.manager.CreateMenuItem("Choose Video Wallpaper…", func() {
		go vp.pickAndSet()
	}, "view.png"))
	items = append(items, vp.manager.CreateMenuItem("Stop Video Wallpaper", func() {
		go vp.stop()
	}, "delete.png"))
	return items
}

// CreatePrefsPanel returns a minimal preferences panel showing the current
// status and a manual stop action; the file picker itself lives in the
// tray menu rather than here.
func (vp *videoPlugin) CreatePrefsPanel(sm setting.SettingsManager) *fyne.Container {
	header := container.NewVBox()
	footer := container.NewVBox()
	prefsPanel := container.NewBorder(header, footer, nil, nil)

	header.Add(sm.CreateSectionTitleLabel("Video Wallpaper"))
	header.Add(sm.CreateSettingDescriptionLabel("Render a looping video as the desktop wallpaper. Supported formats: .mp4, .mkv."))

	status := widget.NewLabel(vp.statusText())
	header.Add(status)

	stopButton := widget.NewButton("Stop", func() {
		vp.stop()
		status.SetText(vp.statusText())
	})
	footer.Add(stopButton)

	return prefsPanel
}

func (vp *videoPlugin) statusText() string {
	s := vp.ctl.Status()
	if !s.IsActive || s.VideoPath == nil {
		return "No video wallpaper active."
	}
	return "Active: " + *s.VideoPath
}

func (vp *videoPlugin) stop() {
	if err := vp.ctl.Stop(); err != nil {
		vp.manager.NotifyUser(pluginName, "Failed to stop video wallpaper")
	}
}

// pickAndSet opens a native file-open dialog scoped to the supported video
// extensions and hands the chosen path to Controller.Set.
func (vp *videoPlugin) pickAndSet() {
	win := fyne.CurrentApp().Driver().AllWindows()
	if len(win) == 0 {
		return
	}

	exts := make([]string, 0, len(mediasurface.SupportedExtensions))
	for ext := range mediasurface.SupportedExtensions {
		exts = append(exts, ext)
	}

	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()

		path := rc.URI().Path()
		if setErr := vp.ctl.Set(path, nil); setErr != nil {
			vp.manager.NotifyUser(pluginName, "Could not set video wallpaper")
		}
	}, win[0])
	d.SetFilter(storage.NewExtensionFileFilter(exts))
	d.Show()
}
