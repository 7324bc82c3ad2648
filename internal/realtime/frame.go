package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"campus_exchange/internal/domain"
)

var (
	errInvalidPayload = errors.New("Invalid payload.")
	errClientGone     = errors.New("client closed")
)

// Operation names, used as metric labels.
const (
	OpTyping  = "typing"
	OpReceipt = "delivery_receipt"
	OpEdit    = "edit_message"
	OpDelete  = "delete_message"
	OpReply   = "reply"
	OpSend    = "send"
)

// Frame is a decoded client frame. Exactly one concrete type is produced
// per accepted frame.
type Frame interface {
	Op() string
}

type TypingFrame struct {
	Typing bool
}

type ReceiptFrame struct {
	MessageID int64
}

type EditFrame struct {
	MessageID  int64
	NewContent string
}

type DeleteFrame struct {
	MessageID int64
}

// SendFrame is a plain send, or a reply when ReplyTo is set.
type SendFrame struct {
	Content string
	ReplyTo *int64
}

func (TypingFrame) Op() string  { return OpTyping }
func (ReceiptFrame) Op() string { return OpReceipt }
func (EditFrame) Op() string    { return OpEdit }
func (DeleteFrame) Op() string  { return OpDelete }

func (f SendFrame) Op() string {
	if f.ReplyTo != nil {
		return OpReply
	}
	return OpSend
}

// messageRef accepts a message id as a JSON number or a numeric string.
type messageRef int64

func (m *messageRef) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil || id <= 0 {
		return errInvalidPayload
	}
	*m = messageRef(id)
	return nil
}

var frameTags = []string{"typing", "delivery_receipt", "edit_message", "delete_message", "content"}

// DecodeFrame parses one client frame. Frames that are not a JSON object,
// carry no recognized tag or carry more than one are rejected with
// errInvalidPayload. Unrecognized keys are ignored.
func DecodeFrame(data []byte) (Frame, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, errInvalidPayload
	}

	var tag string
	for _, t := range frameTags {
		if _, ok := raw[t]; !ok {
			continue
		}
		if tag != "" {
			return nil, errInvalidPayload
		}
		tag = t
	}
	if _, ok := raw["reply_to"]; ok && tag != "content" {
		return nil, errInvalidPayload
	}

	switch tag {
	case "typing":
		var typing bool
		if err := json.Unmarshal(raw[tag], &typing); err != nil {
			return nil, errInvalidPayload
		}
		return TypingFrame{Typing: typing}, nil

	case "delivery_receipt":
		var id messageRef
		if err := json.Unmarshal(raw[tag], &id); err != nil {
			return nil, errInvalidPayload
		}
		return ReceiptFrame{MessageID: int64(id)}, nil

	case "edit_message":
		var body struct {
			MessageID  *messageRef `json:"message_id"`
			NewContent *string     `json:"new_content"`
		}
		if err := json.Unmarshal(raw[tag], &body); err != nil || body.MessageID == nil || body.NewContent == nil {
			return nil, errInvalidPayload
		}
		return EditFrame{MessageID: int64(*body.MessageID), NewContent: *body.NewContent}, nil

	case "delete_message":
		var id messageRef
		if err := json.Unmarshal(raw[tag], &id); err != nil {
			return nil, errInvalidPayload
		}
		return DeleteFrame{MessageID: int64(id)}, nil

	case "content":
		var content string
		if err := json.Unmarshal(raw[tag], &content); err != nil {
			return nil, errInvalidPayload
		}
		frame := SendFrame{Content: content}
		if replyRaw, ok := raw["reply_to"]; ok {
			var id messageRef
			if err := json.Unmarshal(replyRaw, &id); err != nil {
				return nil, errInvalidPayload
			}
			replyTo := int64(id)
			frame.ReplyTo = &replyTo
		}
		return frame, nil
	}

	return nil, errInvalidPayload
}

// Server to client frames. Sends and replies are broadcast as the bare
// message.

type typingEvent struct {
	Typing bool   `json:"typing"`
	User   string `json:"user"`
}

type receiptEvent struct {
	DeliveryReceipt int64  `json:"delivery_receipt"`
	User            string `json:"user"`
}

type editEvent struct {
	EditMessage *domain.Message `json:"edit_message"`
}

type deleteEvent struct {
	DeleteMessage int64 `json:"delete_message"`
}

type errorEvent struct {
	Error string `json:"error"`
}
