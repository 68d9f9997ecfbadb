package desktop

// GeometryListener receives the environment size of a newly configured
// session, e.g. to rescale pointer coordinates.
type GeometryListener func(displayID uint32, environment Geometry)

// Opener is the entry point the capture pipeline uses: it resolves a
// selector against the display catalog and configures a session on the
// result.
type Opener struct {
	catalog   *DisplayCatalog
	backend   CaptureBackend
	listeners []GeometryListener
}

// NewOpener wires a catalog and capture backend together.
func NewOpener(catalog *DisplayCatalog, backend CaptureBackend) *Opener {
	return &Opener{catalog: catalog, backend: backend}
}

// OnGeometry registers fn to be called after every successful configuration.
func (o *Opener) OnGeometry(fn GeometryListener) {
	o.listeners = append(o.listeners, fn)
}

// ResolveAndOpen resolves cfg.Selector and configures a capture session on
// the chosen display. An unresolved selector is not an error: the main
// display is used. The session is returned even when configuration fails so
// the caller can inspect it; in that case it has already been closed and the
// error wraps ErrCaptureConfigurationFailed.
func (o *Opener) ResolveAndOpen(cfg CaptureConfig) (*CaptureSession, error) {
	// The selector error is informational; Resolve already logged it.
	displayID, _ := o.catalog.Resolve(cfg.Selector)

	sess := NewCaptureSession(o.backend, displayID)
	if err := sess.Configure(cfg.FPS); err != nil {
		sess.Close()
		return sess, err
	}

	for _, fn := range o.listeners {
		fn(displayID, sess.EnvironmentSize())
	}
	return sess, nil
}
