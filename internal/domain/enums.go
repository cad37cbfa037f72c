package domain

// UserRole defines the role hierarchy. Reviewers resolve NeedsReview
// documents; admins additionally manage users.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleReviewer UserRole = "reviewer"
	RoleUploader UserRole = "uploader"
)

// ValidUserRoles is the set of assignable roles.
var ValidUserRoles = map[UserRole]bool{
	RoleAdmin:    true,
	RoleReviewer: true,
	RoleUploader: true,
}

// ParsingStatus is the queue lifecycle of a document.
type ParsingStatus string

const (
	ParsingStatusQueued     ParsingStatus = "queued"
	ParsingStatusProcessing ParsingStatus = "processing"
	ParsingStatusCompleted  ParsingStatus = "completed"
	ParsingStatusFailed     ParsingStatus = "failed"
)

// ReviewStatus tracks the human review workflow for documents the pipeline
// routed to review.
type ReviewStatus string

const (
	ReviewStatusNotRequired ReviewStatus = "not_required"
	ReviewStatusPending     ReviewStatus = "pending"
	ReviewStatusApproved    ReviewStatus = "approved"
	ReviewStatusRejected    ReviewStatus = "rejected"
)

// CheckSeverity grades validation findings. Critical findings indicate the
// source data was structurally wrong, warnings indicate degraded trust, info
// is advisory only.
type CheckSeverity string

const (
	CheckSeverityInfo     CheckSeverity = "info"
	CheckSeverityWarning  CheckSeverity = "warning"
	CheckSeverityCritical CheckSeverity = "critical"
)
