package qio

import (
	"os"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// diagnostics is the runtime's ambient observability channel: structured
// logging of recovered defects and double-settlement attempts, rate
// limited so a misbehaving Async register or a hot Chain loop that keeps
// panicking cannot turn into a log storm. A nil *diagnostics (as used by
// the unexported child fibers spawned internally by Zip/Race/Once) is a
// silent no-op at every call site, mirroring the nil-safe optional logger
// field pattern applied throughout this pack's sql/export helpers.
type diagnostics struct {
	logger  *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter
}

// defaultDiagnostics is what NewRuntime uses when the caller supplies
// neither WithLogger nor WithDefectLimiter: a stumpy JSON logger over the
// process's default writer, and a limiter capped at 20 log lines per
// category per second.
func defaultDiagnostics() *diagnostics {
	return &diagnostics{
		logger:  stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr))).Logger(),
		limiter: catrate.NewLimiter(map[time.Duration]int{time.Second: 20}),
	}
}

// logDefect records a recovered panic from a Map/Chain/Catch body or an
// Async register/callback. category is used both as the log field and
// the rate-limiter bucket key, so a defect storm from one phase does not
// starve logging for another.
func (d *diagnostics) logDefect(category string, def *Defect) {
	if d == nil || d.logger == nil || def == nil {
		return
	}
	if d.limiter != nil {
		if _, ok := d.limiter.Allow(category); !ok {
			return
		}
	}
	d.logger.Warning().
		Str("phase", def.Phase).
		Str("category", category).
		Err(def).
		Log("qio: recovered defect")
}

// logDoubleSettle records an Async registration whose resolve/reject was
// invoked more than once, or after the fiber that owns it had already
// moved on. This is always ignored functionally; logging it exists
// purely so a misbehaving integration is visible in production.
func (d *diagnostics) logDoubleSettle(category string) {
	if d == nil || d.logger == nil {
		return
	}
	if d.limiter != nil {
		if _, ok := d.limiter.Allow("double-settle:" + category); !ok {
			return
		}
	}
	d.logger.Notice().
		Str("phase", category).
		Log("qio: ignored async settlement after fiber had already moved on")
}
