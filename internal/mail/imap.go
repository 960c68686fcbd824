package mail

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomail "github.com/emersion/go-message/mail"

	_ "github.com/emersion/go-message/charset"

	"github.com/digitool/docparse/internal/common"
)

// ImapDialer opens TLS IMAP connections.
type ImapDialer struct {
	logger *slog.Logger
}

func NewImapDialer(logger *slog.Logger) *ImapDialer {
	return &ImapDialer{logger: logger}
}

// Dial connects, authenticates and selects the folder. Any failure along the
// way is a TransportFailure: the scan aborts before touching stored data.
func (d *ImapDialer) Dial(host string, port int, username, password, folder string) (Mailbox, error) {
	if port == 0 {
		port = 993
	}
	if folder == "" {
		folder = "INBOX"
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrTransportFailure, "connect "+addr+": "+err.Error())
	}
	if err := client.Login(username, password).Wait(); err != nil {
		_ = client.Close()
		return nil, common.WrapError(common.ErrTransportFailure, "login: "+err.Error())
	}
	if _, err := client.Select(folder, nil).Wait(); err != nil {
		_ = client.Close()
		return nil, common.WrapError(common.ErrTransportFailure, "select "+folder+": "+err.Error())
	}

	d.logger.Info("mail.connect", "host", host, "folder", folder, "username", username)
	return &imapMailbox{client: client, logger: d.logger}, nil
}

type imapMailbox struct {
	client *imapclient.Client
	logger *slog.Logger
}

func (m *imapMailbox) ListUnread() ([]uint32, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	data, err := m.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, common.WrapError(common.ErrTransportFailure, "search unseen: "+err.Error())
	}
	uids := data.AllUIDs()
	ids := make([]uint32, len(uids))
	for i, uid := range uids {
		ids[i] = uint32(uid)
	}
	m.logger.Info("mail.list_unread", "count", len(ids))
	return ids, nil
}

func (m *imapMailbox) Fetch(id uint32) (*Message, error) {
	bodySection := &imap.FetchItemBodySection{}
	msgs, err := m.client.Fetch(imap.UIDSetNum(imap.UID(id)), &imap.FetchOptions{
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}).Collect()
	if err != nil {
		return nil, common.WrapError(common.ErrTransportFailure, fmt.Sprintf("fetch uid %d: %s", id, err))
	}
	if len(msgs) == 0 {
		return nil, common.WrapError(common.ErrNotFound, fmt.Sprintf("message uid %d", id))
	}
	raw := msgs[0].FindBodySection(bodySection)
	if raw == nil {
		return nil, common.WrapError(common.ErrTransportFailure, fmt.Sprintf("fetch uid %d: empty body", id))
	}
	return parseMessage(raw)
}

func (m *imapMailbox) MarkRead(id uint32) error {
	cmd := m.client.Store(imap.UIDSetNum(imap.UID(id)), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return common.WrapError(common.ErrTransportFailure, fmt.Sprintf("mark seen uid %d: %s", id, err))
	}
	return nil
}

func (m *imapMailbox) Close() error {
	if err := m.client.Logout().Wait(); err != nil {
		return m.client.Close()
	}
	return nil
}

// parseMessage decodes the raw RFC 822 bytes into the pipeline's view: the
// first text/plain part becomes the body, attachment parts are collected
// whole.
func parseMessage(raw []byte) (*Message, error) {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}

	msg := &Message{}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if date, err := mr.Header.Date(); err == nil {
		msg.Date = date
	}
	if froms, err := mr.Header.AddressList("From"); err == nil && len(froms) > 0 {
		msg.Sender = formatAddress(froms[0].Name, froms[0].Address)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken part should not lose the rest of the message.
			break
		}
		switch h := part.Header.(type) {
		case *gomail.InlineHeader:
			ct, _, _ := h.ContentType()
			if msg.BodyText == "" && (ct == "" || strings.HasPrefix(ct, "text/plain")) {
				b, err := io.ReadAll(part.Body)
				if err == nil {
					msg.BodyText = string(b)
				}
			}
		case *gomail.AttachmentHeader:
			filename, _ := h.Filename()
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			msg.Attachments = append(msg.Attachments, Attachment{Filename: filename, Data: data})
		}
	}
	return msg, nil
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
