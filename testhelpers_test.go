package main

import "time"

// unixTime and unixDuration keep the clock-related tests readable without
// importing time.Unix/time.Second at every call site.
func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func unixDuration(sec int64) time.Duration {
	return time.Duration(sec) * time.Second
}
