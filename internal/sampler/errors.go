package sampler

import "errors"

var errNoLookup = errors.New("sampler: lookup not configured")
