package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/silonet/silorun/label"
)

func TestEchoAndOrphanOnWriterDrop(t *testing.T) {
	ch := New(1, "c", label.PublicUntrusted(), nil)
	w := NewHalf(ch, Write)
	r := NewHalf(ch, Read)

	require.NoError(t, ch.Enqueue(&Message{Data: []byte{0x01, 0x02}}))
	msg, err := ch.Dequeue()
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, msg.Data)

	w.Close()
	_, err = ch.Dequeue()
	require.ErrorIs(t, err, ErrClosed) // queue empty and no writers -> closed

	require.False(t, ch.HasWriters())
	_, err = ch.Dequeue()
	require.ErrorIs(t, err, ErrClosed)

	r.Close()
}

func TestOrphanOnReaderDropBeforeWrite(t *testing.T) {
	ch := New(1, "c", label.PublicUntrusted(), nil)
	w := NewHalf(ch, Write)
	r := NewHalf(ch, Read)

	r.Close()
	err := ch.Enqueue(&Message{Data: []byte("x")})
	require.ErrorIs(t, err, ErrClosed)
	w.Close()
}

func TestCapacityProbe(t *testing.T) {
	ch := New(1, "c", label.PublicUntrusted(), nil)
	w := NewHalf(ch, Write)
	r := NewHalf(ch, Read)
	defer w.Close()
	defer r.Close()

	h2 := NewHalf(New(2, "inner", label.PublicUntrusted(), nil), Write)
	defer h2.Close()

	require.NoError(t, ch.Enqueue(&Message{
		Data:     make([]byte, 7),
		Channels: []*Half{h2, h2.Clone()},
	}))

	bLen, hLen, present, err := ch.PeekCapacity()
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, 7, bLen)
	require.Equal(t, 2, hLen)

	_, fits, err := ch.DequeueIfFits(4, 4)
	require.NoError(t, err)
	require.False(t, fits)

	// Message must still be there.
	bLen, hLen, present, err = ch.PeekCapacity()
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, 7, bLen)
	require.Equal(t, 2, hLen)

	msg, fits, err := ch.DequeueIfFits(7, 2)
	require.NoError(t, err)
	require.True(t, fits)
	require.Len(t, msg.Channels, 2)
	for _, half := range msg.Channels {
		half.Close()
	}
}

func TestWaitWakesOnEnqueue(t *testing.T) {
	ch := New(1, "c", label.PublicUntrusted(), nil)
	w := NewHalf(ch, Write)
	r := NewHalf(ch, Read)
	defer w.Close()
	defer r.Close()

	p := NewParker()
	ch.AddWaiter(p)
	require.Equal(t, NotReady, ch.State())

	woken := make(chan struct{})
	go func() {
		p.Park()
		close(woken)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ch.Enqueue(&Message{Data: []byte("hi")}))

	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("waiter never woke after enqueue")
	}
	require.Equal(t, ReadReady, ch.State())
}

func TestHandleCloneIncrementsCount(t *testing.T) {
	ch := New(1, "c", label.PublicUntrusted(), nil)
	r := NewHalf(ch, Read)
	r2 := r.Clone()

	require.True(t, ch.HasReaders())
	r.Close()
	require.True(t, ch.HasReaders()) // r2 still live
	r2.Close()
	require.False(t, ch.HasReaders())
}
