// Package mail defines the mailbox collaborator used by the scan pipeline
// and implements it over IMAP.
package mail

import "time"

// Attachment is one file attached to a fetched message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is the scan pipeline's view of one mailbox message.
type Message struct {
	Sender      string
	Subject     string
	Date        time.Time
	BodyText    string
	Attachments []Attachment
}

// Mailbox is a single serial connection to one user's mailbox. Commands must
// not be issued concurrently.
type Mailbox interface {
	// ListUnread returns ids of the messages not yet marked seen.
	ListUnread() ([]uint32, error)
	Fetch(id uint32) (*Message, error)
	// MarkRead flags the message seen. Called only after the message's
	// processing outcome has been durably recorded.
	MarkRead(id uint32) error
	Close() error
}

// Dialer opens a mailbox connection for one user's configuration.
type Dialer interface {
	Dial(host string, port int, username, password, folder string) (Mailbox, error)
}
