package domain

import "fmt"

const (
	RateLimitScopeUser = "user"
	RateLimitScopeIP   = "ip"
)

// RateLimitKey builds the counter key for a scope and subject.
func RateLimitKey(scope, subject string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, subject)
}
