package latewatch

import "time"

type options struct {
	location *time.Location
	clock    func() time.Time
	locale   string
}

// Option configures a Latewatch instance.
type Option func(*options)

// WithLocation sets the zone used for calendar dates, lateness and
// zone-less timestamps. Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// WithClock replaces time.Now, which stands in for unparseable dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithLocale picks the default labels for blank group and reason cells:
// "ms" (default) or "en".
func WithLocale(locale string) Option {
	return func(o *options) {
		o.locale = locale
	}
}

func defaultOptions() options {
	return options{
		location: time.Local,
		clock:    time.Now,
		locale:   "ms",
	}
}
