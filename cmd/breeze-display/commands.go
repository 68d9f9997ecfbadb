package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/breeze-rmm/displayhost/internal/remote/desktop"
)

type displayReport struct {
	Host     *desktop.HostPlatform       `json:"host,omitempty" yaml:"host,omitempty"`
	MainID   uint32                      `json:"mainDisplayId" yaml:"mainDisplayId"`
	Displays []desktop.DisplayDescriptor `json:"displays" yaml:"displays"`
	Degraded string                      `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

type resolveReport struct {
	Selector  string `json:"selector" yaml:"selector"`
	DisplayID uint32 `json:"displayId" yaml:"displayId"`
	Fallback  bool   `json:"fallback" yaml:"fallback"`
}

type sessionReport struct {
	DisplayID   uint32               `json:"displayId" yaml:"displayId"`
	State       desktop.SessionState `json:"state" yaml:"state"`
	FPS         int                  `json:"fps" yaml:"fps"`
	Frame       desktop.Geometry     `json:"frame" yaml:"frame"`
	Environment desktop.Geometry     `json:"environment" yaml:"environment"`
}

func newCatalog() *desktop.DisplayCatalog {
	return desktop.NewDisplayCatalog(desktop.NewDisplaySource())
}

func listDisplays(w io.Writer) error {
	catalog := newCatalog()

	if !verbose {
		names := catalog.DisplayNames(desktop.MemorySystem)
		return render(w, cfg.OutputFormat, names, func(w io.Writer) {
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
		})
	}

	displays, err := catalog.Snapshot()
	report := displayReport{
		MainID:   catalog.MainDisplayID(),
		Displays: displays,
	}
	if err != nil {
		log.Warn("display enumeration degraded", "error", err)
		report.Degraded = err.Error()
	}
	if host, hostErr := desktop.DetectHostPlatform(); hostErr == nil {
		report.Host = &host
	} else {
		log.Debug("host platform lookup failed", "error", hostErr)
	}

	return render(w, cfg.OutputFormat, report, func(w io.Writer) {
		if report.Host != nil {
			fmt.Fprintf(w, "Host: %s %s\n", report.Host.Platform, report.Host.Version)
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tORIGIN\tCONNECTIVITY\tMAIN")
		for _, d := range report.Displays {
			marker := ""
			if d.ID == report.MainID {
				marker = "*"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Origin, d.Connectivity, marker)
		}
		tw.Flush()
		if report.Degraded != "" {
			fmt.Fprintf(w, "warning: %s\n", report.Degraded)
		}
	})
}

func resolveSelector(w io.Writer, selector string) error {
	id, err := newCatalog().Resolve(selector)
	if err != nil && !errors.Is(err, desktop.ErrSelectorUnresolved) {
		return err
	}
	report := resolveReport{Selector: selector, DisplayID: id, Fallback: err != nil}

	return render(w, cfg.OutputFormat, report, func(w io.Writer) {
		if report.Fallback {
			fmt.Fprintf(w, "%d (selector %q not found, using main display)\n", id, selector)
			return
		}
		fmt.Fprintln(w, id)
	})
}

func openSession(w io.Writer, selector string) error {
	opener := desktop.NewOpener(newCatalog(), desktop.NewCaptureBackend())
	opener.OnGeometry(func(displayID uint32, env desktop.Geometry) {
		log.Info("input environment updated", "displayId", displayID, "width", env.Width, "height", env.Height)
	})

	sess, err := opener.ResolveAndOpen(desktop.CaptureConfig{Selector: selector, FPS: cfg.TargetFPS})
	if err != nil {
		return err
	}
	defer sess.Close()

	report := sessionReport{
		DisplayID:   sess.DisplayID(),
		State:       sess.State(),
		FPS:         cfg.TargetFPS,
		Frame:       sess.FrameSize(),
		Environment: sess.EnvironmentSize(),
	}
	err = render(w, cfg.OutputFormat, report, func(w io.Writer) {
		fmt.Fprintf(w, "Capturing display %d at %dx%d, %d fps. Press Ctrl+C to stop.\n",
			report.DisplayID, report.Frame.Width, report.Frame.Height, report.FPS)
	})
	if err != nil {
		return err
	}

	waitForShutdown(logFile)
	log.Info("closing capture session", "displayId", sess.DisplayID())
	return nil
}

func probeEncoders(w io.Writer) error {
	changed := desktop.EncoderChangeProbe{}.ChangedSinceLastCheck()
	return render(w, cfg.OutputFormat, map[string]bool{"changed": changed}, func(w io.Writer) {
		fmt.Fprintf(w, "changed: %t\n", changed)
	})
}
