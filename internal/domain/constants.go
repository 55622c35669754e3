package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	UserStatusActive    = "ACTIVE"
	UserStatusSuspended = "SUSPENDED"
)

const (
	WithdrawalStatusRequested = "REQUESTED"
	WithdrawalStatusCompleted = "COMPLETED"
	WithdrawalStatusRejected  = "REJECTED"
)

const (
	BulkActionApprove = "approve"
	BulkActionReject  = "reject"
)

const (
	OTPPurposeWithdrawal = "WITHDRAWAL"
)

// System setting keys. Values override the config defaults at runtime.
const (
	SettingReferralShare = "referral_share"
	SettingMinWithdrawal = "min_withdrawal"
)
