package internaldefs

import (
	"github.com/hlynes/docsession"
)

// CounterDef binds one docsession counter to its exported name and help text.
type CounterDef struct {
	ID   docsession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a fixed, render-stable order.
var CounterDefs = []CounterDef{
	{ID: docsession.MetricLoadFresh, Name: "docsession_load_fresh_total", Help: "Loads with no session cookie presented."},
	{ID: docsession.MetricLoadMiss, Name: "docsession_load_miss_total", Help: "Loads whose cookie key had no stored document."},
	{ID: docsession.MetricLoadExpired, Name: "docsession_load_expired_total", Help: "Loads that found an expired session document."},
	{ID: docsession.MetricLoadRejected, Name: "docsession_load_rejected_total", Help: "Loads that found an undecodable or ill-typed payload."},
	{ID: docsession.MetricLoadHit, Name: "docsession_load_hit_total", Help: "Loads that restored a stored session."},
	{ID: docsession.MetricSaveWritten, Name: "docsession_save_written_total", Help: "Saves that wrote a session document."},
	{ID: docsession.MetricSaveDeleted, Name: "docsession_save_deleted_total", Help: "Saves that deleted a session document."},
	{ID: docsession.MetricSaveSkipped, Name: "docsession_save_skipped_total", Help: "Saves of never-populated sessions (no-ops)."},
}
