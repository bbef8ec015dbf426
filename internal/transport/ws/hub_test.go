package ws

import (
	"sync"
	"testing"
)

type fakeConn struct {
	mu     sync.Mutex
	userID string
	roomID string
	got    []Message
}

func (c *fakeConn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, msg)
	return nil
}

func (c *fakeConn) Close() error   { return nil }
func (c *fakeConn) UserID() string { return c.userID }
func (c *fakeConn) RoomID() string { return c.roomID }

func (c *fakeConn) received() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.got))
	copy(out, c.got)
	return out
}

func TestHub_BroadcastReachesRoomOnly(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{userID: "1", roomID: "r1"}
	b := &fakeConn{userID: "2", roomID: "r1"}
	other := &fakeConn{userID: "3", roomID: "r2"}
	hub.Add(a)
	hub.Add(b)
	hub.Add(other)

	hub.Broadcast("r1", Message{Type: TypeChat})

	if len(a.received()) != 1 || len(b.received()) != 1 {
		t.Fatalf("room members should each get one message: a=%d b=%d", len(a.received()), len(b.received()))
	}
	if len(other.received()) != 0 {
		t.Fatalf("other room should get nothing, got %d", len(other.received()))
	}
	if got := a.received()[0].Channel; got != "room.r1" {
		t.Fatalf("channel name mismatch: %q", got)
	}
}

func TestHub_BroadcastExceptSkipsSender(t *testing.T) {
	hub := NewHub()
	sender := &fakeConn{userID: "1", roomID: "r1"}
	peer := &fakeConn{userID: "2", roomID: "r1"}
	hub.Add(sender)
	hub.Add(peer)

	hub.BroadcastExcept("r1", "1", Message{Type: TypeRTCSignal})

	if len(sender.received()) != 0 {
		t.Fatalf("sender should be excluded, got %d", len(sender.received()))
	}
	if len(peer.received()) != 1 {
		t.Fatalf("peer should receive the signal, got %d", len(peer.received()))
	}
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()
	target1 := &fakeConn{userID: "2", roomID: "r1"}
	target2 := &fakeConn{userID: "2", roomID: "r1"} // second tab
	bystander := &fakeConn{userID: "3", roomID: "r1"}
	hub.Add(target1)
	hub.Add(target2)
	hub.Add(bystander)

	if !hub.SendToUser("r1", "2", Message{Type: TypeRTCSignal}) {
		t.Fatal("SendToUser should report delivery")
	}
	if len(target1.received()) != 1 || len(target2.received()) != 1 {
		t.Fatal("every connection of the target user should receive the message")
	}
	if len(bystander.received()) != 0 {
		t.Fatal("bystander should receive nothing")
	}

	if hub.SendToUser("r1", "99", Message{Type: TypeRTCSignal}) {
		t.Fatal("SendToUser should report false for an absent user")
	}
}

func TestHub_RemoveDropsConnection(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{userID: "1", roomID: "r1"}
	hub.Add(a)
	hub.Remove(a)

	hub.Broadcast("r1", Message{Type: TypeChat})

	if len(a.received()) != 0 {
		t.Fatalf("removed connection should get nothing, got %d", len(a.received()))
	}
}
