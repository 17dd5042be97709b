package domain

// UserRole represents the authorization level of a back-office user.
type UserRole string

const (
	UserRoleStaff UserRole = "staff"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleStaff, UserRoleAdmin:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}

// JobStatus represents the lifecycle state of a shoot/appraisal job.
type JobStatus string

const (
	JobStatusRequested  JobStatus = "requested"
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDelivered  JobStatus = "delivered"
	JobStatusPaid       JobStatus = "paid"
	JobStatusCancelled  JobStatus = "cancelled"
)

func (s JobStatus) String() string { return string(s) }

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusRequested, JobStatusScheduled, JobStatusInProgress,
		JobStatusDelivered, JobStatusPaid, JobStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the job can no longer change state on its own.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusPaid || s == JobStatusCancelled
}

// ServiceType represents the kind of work a job covers.
type ServiceType string

const (
	ServicePhotography ServiceType = "photography"
	ServiceAppraisal   ServiceType = "appraisal"
	ServiceAerial      ServiceType = "aerial"
	ServiceCombo       ServiceType = "combo"
)

func (t ServiceType) String() string { return string(t) }

func (t ServiceType) IsValid() bool {
	switch t {
	case ServicePhotography, ServiceAppraisal, ServiceAerial, ServiceCombo:
		return true
	}
	return false
}

// InvoiceStatus mirrors the payment provider's invoice lifecycle,
// persisted locally for reconciliation.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

func (s InvoiceStatus) String() string { return string(s) }

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// NotificationKind categorizes dashboard notifications.
type NotificationKind string

const (
	NotificationNewRequest NotificationKind = "new_request"
	NotificationPayment    NotificationKind = "payment"
	NotificationStorage    NotificationKind = "storage"
)

func (k NotificationKind) String() string { return string(k) }
