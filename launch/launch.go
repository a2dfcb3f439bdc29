// Package launch runs the dashboard from the system tray and watches the screen recorder process.
package launch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/getlantern/systray"
	"github.com/shirou/gopsutil/process"
)

type TrayOptions struct {
	// DashboardURL is opened by the "Open dashboard" menu item.
	DashboardURL string
	// IconPath is an optional .ico/.png file for the tray icon.
	IconPath string
	Log      *slog.Logger
}

// RunTray shows the tray icon and runs serve until the user quits, ctx ends or serve returns.
// It must be called from the main goroutine.
func RunTray(ctx context.Context, opts TrayOptions, serve func(context.Context) error) error {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		serveErr error
	)

	onReady := func() {
		if opts.IconPath != "" {
			if icon, err := os.ReadFile(opts.IconPath); err == nil {
				systray.SetIcon(icon)
			}
		}
		systray.SetTitle("Screen usage")
		systray.SetTooltip("Screen usage dashboard")

		mOpen := systray.AddMenuItem("Open dashboard", "Open "+opts.DashboardURL+" in the browser")
		mQuit := systray.AddMenuItem("Quit", "Stop the dashboard")

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				serveErr = err
			}
			systray.Quit()
		}()

		go func() {
			for {
				select {
				case <-mOpen.ClickedCh:
					if err := openBrowser(opts.DashboardURL); err != nil {
						opts.Log.Warn("open_browser_failed", "url", opts.DashboardURL, "error", err.Error())
					}
				case <-mQuit.ClickedCh:
					systray.Quit()
					return
				case <-ctx.Done():
					systray.Quit()
					return
				}
			}
		}()
	}

	onExit := func() {
		cancel()
		wg.Wait()
	}

	systray.Run(onReady, onExit)
	return serveErr
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

func openBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Start()
}

// RecorderRunning reports whether a process called name is alive.
// The comparison ignores case and a trailing ".exe".
func RecorderRunning(name string) (bool, error) {
	want := normalizeProcessName(name)
	if want == "" {
		return false, nil
	}
	processes, err := process.Processes()
	if err != nil {
		return false, err
	}
	for _, p := range processes {
		if p == nil {
			continue
		}
		got, err := p.Name()
		if err != nil {
			continue
		}
		if normalizeProcessName(got) == want {
			return true, nil
		}
	}
	return false, nil
}

// RecorderProbe adapts RecorderRunning for the health endpoint; lookup errors read as not running.
func RecorderProbe(name string, log *slog.Logger) func() bool {
	return func() bool {
		ok, err := RecorderRunning(name)
		if err != nil && log != nil {
			log.Warn("process_list_failed", "error", err.Error())
		}
		return ok
	}
}

func normalizeProcessName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}
