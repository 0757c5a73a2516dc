package utils

import (
	"strings"
	"time"
)

func BuildFeedCacheKey(instructor *string, from *time.Time) string {
	i := ""
	if instructor != nil {
		i = strings.ToLower(strings.TrimSpace(*instructor))
	}
	f := ""
	if from != nil {
		f = from.Format(time.RFC3339Nano)
	}

	return "events:feed:v1:instructor=" + i + ":from=" + f
}
