package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbox_RetentionEvictsOldest(t *testing.T) {
	b := NewInbox(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Deliver(context.Background(), Notification{ID: fmt.Sprint(i), Kind: KindCustom}))
	}

	list := b.List(false)
	require.Len(t, list, 3)
	assert.Equal(t, "4", list[0].ID, "newest first")
	assert.Equal(t, "2", list[2].ID)
}

func TestInbox_AcknowledgeIsMonotonic(t *testing.T) {
	b := NewInbox(0)
	require.NoError(t, b.Deliver(context.Background(), Notification{ID: "a", Kind: KindScheduleDue}))

	n, err := b.Acknowledge("a")
	require.NoError(t, err)
	assert.True(t, n.Acknowledged)

	n, err = b.Acknowledge("a")
	require.NoError(t, err)
	assert.True(t, n.Acknowledged)

	assert.Empty(t, b.List(true))

	_, err = b.Acknowledge("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInbox_LatestAndSubscribe(t *testing.T) {
	b := NewInbox(0)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := context.Background()
	require.NoError(t, b.Deliver(ctx, Notification{ID: "1", Kind: KindDeviceLeftOn}))
	require.NoError(t, b.Deliver(ctx, Notification{ID: "2", Kind: KindScheduleDue}))

	n, ok := b.Latest(KindDeviceLeftOn)
	require.True(t, ok)
	assert.Equal(t, "1", n.ID)

	_, ok = b.Latest(KindCustom)
	assert.False(t, ok)

	assert.Equal(t, "1", (<-ch).ID)
	assert.Equal(t, "2", (<-ch).ID)
}

func TestFanout_JoinsErrors(t *testing.T) {
	var got []string
	ok := SinkFunc(func(_ context.Context, n Notification) error {
		got = append(got, n.ID)
		return nil
	})
	failing := SinkFunc(func(context.Context, Notification) error {
		return fmt.Errorf("broker down")
	})

	err := Fanout{failing, ok}.Deliver(context.Background(), Notification{ID: "x"})
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, []string{"x"}, got)
}

func TestInbox_RestoreAndAckHook(t *testing.T) {
	b := NewInbox(2)
	var acked []string
	b.OnAcknowledge(func(n Notification) { acked = append(acked, n.ID) })

	b.Restore([]Notification{{ID: "old"}, {ID: "a"}, {ID: "b"}})
	list := b.List(false)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	_, err := b.Acknowledge("a")
	require.NoError(t, err)
	_, err = b.Acknowledge("old")
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, acked)
}
