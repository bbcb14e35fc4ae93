package constants

// ContextKeyUserID is the gin context key under which the authenticated
// user's ID is stored by the auth middleware.
const ContextKeyUserID = "user_id"

const (
	MinPasswordLength = 8
	MinTitleLength    = 3
)

// WordsPerMinute is the reading speed used to derive a document's read time
// from its word count.
const WordsPerMinute = 200

// Pagination bounds.
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
