package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func JobStateKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s", jobID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

func AssetListKey(project, category string, page, limit int) string {
	return fmt.Sprintf("assets:%s:%s:%d:%d", project, category, page, limit)
}
