package entity

import "time"

// EmailScanStatus summarizes the most recent mailbox scan for one user.
type EmailScanStatus struct {
	UserID        string    `json:"user_id"`
	LastChecked   time.Time `json:"last_checked"`
	NewEmailCount int       `json:"new_email_count"`
	TotalScanned  int       `json:"total_scanned"`
	LastError     string    `json:"last_error,omitempty"`
}

// MailboxConfig is the per-user IMAP connection configuration. The password
// is stored as given; the store is the trust boundary.
type MailboxConfig struct {
	UserID   string `json:"user_id"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Folder   string `json:"folder,omitempty"`

	LastTest   *time.Time `json:"last_test,omitempty"`
	TestStatus string     `json:"test_status,omitempty"`
}
