package staff

import (
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

// Clock converts "HH:mm" wall-clock readings to stored instants and back, always in
// the fixed clinic timezone. Stored instants are anchored to the clinic's current date.
type Clock struct {
	loc    *time.Location
	now    func() time.Time
	logger *logging.Logger
}

// NewClock builds a clock for the clinic location.
func NewClock(loc *time.Location, logger *logging.Logger) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Clock{loc: loc, now: time.Now, logger: logger}
}

// WithNow overrides the time source.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	c.now = now
	return c
}

// ToInstant maps "HH:mm" or "HH:mm:ss" to that reading on today's clinic date, in UTC.
// Malformed input yields nil.
func (c *Clock) ToInstant(reading string) *time.Time {
	h, m, s, ok := parseReading(reading)
	if !ok {
		c.logger.Warn("could not parse time reading", "value", reading)
		return nil
	}
	today := c.now().In(c.loc)
	t := time.Date(today.Year(), today.Month(), today.Day(), h, m, s, 0, c.loc).UTC()
	return &t
}

// Reading formats a stored instant as "HH:mm" in the clinic timezone.
func (c *Clock) Reading(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.In(c.loc).Format("15:04")
	return &s
}

func parseReading(v string) (hour, minute, second int, ok bool) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	limits := []int{23, 59, 59}
	vals := make([]int, 3)
	for i, p := range parts {
		if p == "" || len(p) > 2 {
			return 0, 0, 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, 0, 0, false
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], true
}
