package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/ws"
)

func newMessageEvent(seq int64, msg models.Message) ws.Event {
	return ws.Event{Op: ws.OpNewMessage, Seq: seq, Data: msg}
}

func TestSocket_Dispatch_FiresRegisteredHandlers(t *testing.T) {
	req := require.New(t)
	s := NewSocket("http://localhost", "token")

	var first, second []string
	s.OnNewMessage(func(m models.Message) { first = append(first, m.ID) })
	s.OnNewMessage(func(m models.Message) { second = append(second, m.ID) })

	s.dispatch(newMessageEvent(1, serverMsg("m1", "bob", "alice", "selam")))

	req.Equal([]string{"m1"}, first)
	req.Equal([]string{"m1"}, second)
}

func TestSocket_Unsubscribe_StopsOnlyThatHandler(t *testing.T) {
	req := require.New(t)
	s := NewSocket("http://localhost", "token")

	var kept, dropped []string
	s.OnNewMessage(func(m models.Message) { kept = append(kept, m.ID) })
	unsub := s.OnNewMessage(func(m models.Message) { dropped = append(dropped, m.ID) })

	s.dispatch(newMessageEvent(1, serverMsg("m1", "bob", "alice", "bir")))
	unsub()
	s.dispatch(newMessageEvent(2, serverMsg("m2", "bob", "alice", "iki")))

	// Sadece iptal edilen handler susar, diğeri almaya devam eder
	req.Equal([]string{"m1", "m2"}, kept)
	req.Equal([]string{"m1"}, dropped)
}

func TestSocket_Unsubscribe_SecondCallIsNoop(t *testing.T) {
	req := require.New(t)
	s := NewSocket("http://localhost", "token")

	var got []string
	unsubA := s.OnNewMessage(func(m models.Message) { got = append(got, "a:"+m.ID) })
	unsubA()
	unsubA()

	// Önceki iptal sonradan eklenen handler'ı etkilemez
	s.OnNewMessage(func(m models.Message) { got = append(got, "b:"+m.ID) })
	s.dispatch(newMessageEvent(1, serverMsg("m1", "bob", "alice", "selam")))

	req.Equal([]string{"b:m1"}, got)
}

func TestSocket_Dispatch_SeqGapTriggersResync(t *testing.T) {
	req := require.New(t)
	s := NewSocket("http://localhost", "token")

	resyncs := 0
	s.OnResync(func() { resyncs++ })

	s.dispatch(newMessageEvent(1, serverMsg("m1", "bob", "alice", "bir")))
	s.dispatch(newMessageEvent(2, serverMsg("m2", "bob", "alice", "iki")))
	req.Zero(resyncs, "ardışık seq resync tetiklemez")

	// 3 kayboldu
	s.dispatch(newMessageEvent(4, serverMsg("m4", "bob", "alice", "dört")))
	req.Equal(1, resyncs)
}

func TestSocket_OnResync_UnsubscribeStopsNotifications(t *testing.T) {
	req := require.New(t)
	s := NewSocket("http://localhost", "token")

	resyncs := 0
	unsub := s.OnResync(func() { resyncs++ })

	s.dispatch(newMessageEvent(5, serverMsg("m5", "bob", "alice", "beş")))
	s.dispatch(newMessageEvent(9, serverMsg("m9", "bob", "alice", "dokuz")))
	req.Equal(1, resyncs)

	unsub()
	s.dispatch(newMessageEvent(20, serverMsg("m20", "bob", "alice", "yirmi")))
	req.Equal(1, resyncs)
}
