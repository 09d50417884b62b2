package auth

// Principal is the authenticated caller as asserted by the upstream
// identity provider. This service treats it as opaque and trusted.
type Principal struct {
	StudentID uint64
	IsAdmin   bool
}
