package core

// QuickMsgs manages the stored quick messages: short canned texts the
// operator can key with one command instead of typing them to the host.
type QuickMsgs struct {
	storage *Storage
}

// NewQuickMsgs returns the quick message manager.
func NewQuickMsgs(storage *Storage) *QuickMsgs {
	return &QuickMsgs{storage: storage}
}

// Get returns the message in slot, or ok=false if the slot is empty.
func (q *QuickMsgs) Get(slot int) (string, bool) {
	return q.storage.LoadQuickMsg(slot)
}

// Set stores msg in slot. Returns false if the slot is out of range, the
// message is empty or too long, or it contains a character with no Morse
// encoding.
func (q *QuickMsgs) Set(slot int, msg string) bool {
	if slot < 0 || slot >= QuickMsgCount {
		return false
	}
	if len(msg) == 0 || len(msg) > QuickMsgMaxLen {
		return false
	}
	var scratch [16]Element
	for i := 0; i < len(msg); i++ {
		if _, ok := AppendElements(scratch[:0], msg[i]); !ok {
			return false
		}
	}
	return q.storage.SaveQuickMsg(slot, msg) == nil
}

// Invalidate empties slot. Returns false if the slot is out of range.
func (q *QuickMsgs) Invalidate(slot int) bool {
	if slot < 0 || slot >= QuickMsgCount {
		return false
	}
	return q.storage.InvalidateQuickMsg(slot) == nil
}

// Play queues the message in slot on the keyer. Returns false if the slot
// is empty or the keyer's queue lacks room for the whole message.
func (q *QuickMsgs) Play(slot int, k *Keyer) bool {
	msg, ok := q.Get(slot)
	if !ok {
		return false
	}
	return k.AutokeyString(msg) == len(msg)
}
