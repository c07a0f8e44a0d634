package constant

type SessionStatus string

const (
	SessionStatusPending SessionStatus = "pending"
	SessionStatusSigned  SessionStatus = "signed"
	// Set when a newer link replaces this one; behaves like an unknown token
	SessionStatusRevoked SessionStatus = "revoked"
)

type ActivityEvent string

const (
	ActivityDocumentUploaded  ActivityEvent = "document.uploaded"
	ActivityLayoutSaved       ActivityEvent = "layout.saved"
	ActivitySessionsIssued    ActivityEvent = "sessions.issued"
	ActivitySessionRevoked    ActivityEvent = "session.revoked"
	ActivityNotifyFailed      ActivityEvent = "notification.failed"
	ActivitySignatureStyle    ActivityEvent = "session.style_adopted"
	ActivitySessionSigned     ActivityEvent = "session.signed"
	ActivityDocumentCompleted ActivityEvent = "document.completed"
)
