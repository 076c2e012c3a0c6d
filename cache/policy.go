package cache

import (
	"os"
	"time"

	"druckerei-client/utils"
)

// Policy controls how a class of cached reads is deduplicated and refreshed.
// Defaults are deliberately conservative (long dedupe windows, no focus
// revalidation) to keep redundant remote calls down.
type Policy struct {
	DedupeInterval    time.Duration
	RevalidateOnFocus bool
	RevalidateStale   bool
	ErrorRetryCount   int
}

// Named policy classes. Each is independently tunable via env:
// CACHE_LIST_DEDUPE_SECONDS, CACHE_DETAIL_DEDUPE_SECONDS,
// CACHE_DROPDOWN_DEDUPE_SECONDS, CACHE_STATS_DEDUPE_SECONDS.
func DefaultPolicies() Policies {
	return Policies{
		List: Policy{
			DedupeInterval:    envSeconds("CACHE_LIST_DEDUPE_SECONDS", 20*60),
			RevalidateOnFocus: false,
			RevalidateStale:   true,
			ErrorRetryCount:   2,
		},
		Detail: Policy{
			DedupeInterval:    envSeconds("CACHE_DETAIL_DEDUPE_SECONDS", 20*60),
			RevalidateOnFocus: false,
			RevalidateStale:   true,
			ErrorRetryCount:   2,
		},
		Dropdown: Policy{
			DedupeInterval:    envSeconds("CACHE_DROPDOWN_DEDUPE_SECONDS", 60*60),
			RevalidateOnFocus: false,
			RevalidateStale:   false,
			ErrorRetryCount:   1,
		},
		Stats: Policy{
			DedupeInterval:    envSeconds("CACHE_STATS_DEDUPE_SECONDS", 15*60),
			RevalidateOnFocus: false,
			RevalidateStale:   true,
			ErrorRetryCount:   2,
		},
	}
}

type Policies struct {
	List     Policy
	Detail   Policy
	Dropdown Policy
	Stats    Policy
}

func envSeconds(key string, def int) time.Duration {
	return time.Duration(utils.ParseIntDefault(os.Getenv(key), def)) * time.Second
}
