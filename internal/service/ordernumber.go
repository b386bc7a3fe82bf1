package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newOrderNumber returns ORD-YYYYMMDD-XXXXXXXX.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.UTC().Format("20060102") + "-" + suffix
}
