// Package domain models reservoir and river telemetry for the White River
// Basin dashboard backend.
//
// # Data Source
//
// Readings originate from the basin operator's gauge exports. The upstream
// collector publishes each row as flat JSON to the Kafka source topic, one
// message per observation. Every measurement arrives string-encoded exactly
// as exported, so the parsing layer here is the single place where the
// export format's quirks are absorbed.
//
// # Export Conventions
//
// Date and time:
//
//	Dates use "dd.mm.yyyy", e.g. "15.03.2024".
//	An optional "HH:mm" clock time marks hourly-granularity data; daily
//	exports omit it. A row without a date is invalid and is dropped. A row
//	with a malformed date or time is kept but timestamped with the current
//	moment, so corrupt historical rows never take the dashboard down. The
//	substitution is reported to the caller, which logs a warning; consumers
//	must tolerate such rows clustering at "now".
//
// Numeric fields:
//
//	Measurements may carry thousands separators ("1,983,000"), percent signs
//	("87%"), or trailing unit suffixes ("564.3 ft"). Coercion strips commas
//	and parses the leading numeric prefix; anything unparseable becomes 0.
//	Callers that need to distinguish missing from zero check presence before
//	coercing (see [CoerceOptional]).
//
// Flow rates are in CFS (cubic feet per second), levels in feet above mean
// sea level, storage in acre-feet, rainfall in millimetres.
//
// # Alert Zones
//
// A station's current level is classified against its configured threshold
// bands in descending priority: red, orange, blue, then normal. Boundaries
// are inclusive and there is no hysteresis; a level oscillating around a
// threshold flips zone on every evaluation.
//
// # Trend Estimation
//
// The hourly level-change estimate converts net flow (inflow minus total
// outflow) into a rate of change using a linear surface-area approximation
// between two configured (level, acres) reference points. Real area-level
// curves are nonlinear; this is deliberately a first-order estimate. When at
// least three recent samples are available and show a swing above 0.05 ft,
// the observed direction overrides the instantaneous-flow classification.
package domain
