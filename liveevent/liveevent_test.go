package liveevent

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/liveevent.go/ierrors"
	"github.com/iotaledger/liveevent.go/lifecycle"
	"github.com/iotaledger/liveevent.go/logger"
	"github.com/iotaledger/liveevent.go/mainthread"
)

type recorder[T any] struct {
	values []T
}

func (r *recorder[T]) record(value T) {
	r.values = append(r.values, value)
}

func offMainThread(t *testing.T, f func()) (recovered any) {
	t.Helper()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { recovered = recover() }()

		f()
	}()
	wg.Wait()

	return recovered
}

func requireNotOnMainThread(t *testing.T, recovered any) {
	t.Helper()

	err, isErr := recovered.(error)
	require.True(t, isErr, "expected an error panic but got %v", recovered)
	require.True(t, ierrors.Is(err, mainthread.ErrNotOnMainThread))
}

func TestLiveEvent_StickyReceivesPastValue(t *testing.T) {
	e := New[int](mainthread.NewManual())

	e.Post(99)

	sticky := &recorder[int]{}
	e.ListenForeverSticky(sticky.record)
	require.Equal(t, []int{99}, sticky.values)

	e.Post(109)
	require.Equal(t, []int{99, 109}, sticky.values)
}

func TestLiveEvent_NormalReceivesEveryPostOnce(t *testing.T) {
	e := New[int](mainthread.NewManual())

	normal := &recorder[int]{}
	subscription := e.ListenForever(normal.record)

	entry, exists := e.listeners.Get(subscription.ID())
	require.True(t, exists)
	require.Equal(t, 0, entry.lastVersion)

	e.Post(10)
	require.Equal(t, 1, entry.lastVersion)

	e.Post(20)
	require.Equal(t, 2, entry.lastVersion)

	require.Equal(t, []int{10, 20}, normal.values)
	require.Equal(t, 2, e.Version())
}

func TestLiveEvent_NormalIgnoresPastValue(t *testing.T) {
	e := New[int](mainthread.NewManual())
	e.Post(1)

	normal := &recorder[int]{}
	e.ListenForever(normal.record)
	require.Empty(t, normal.values)

	e.Post(2)
	require.Equal(t, []int{2}, normal.values)
}

func TestLiveEvent_NothingPosted(t *testing.T) {
	e := New[string](mainthread.NewManual())

	sticky := &recorder[string]{}
	e.ListenForeverSticky(sticky.record)
	require.Empty(t, sticky.values)

	value, posted := e.Value()
	require.False(t, posted)
	require.Empty(t, value)
	require.Equal(t, 0, e.Version())
}

func TestLiveEvent_NewWithValue(t *testing.T) {
	e := NewWithValue(mainthread.NewManual(), "initial", WithName("greeting"))
	require.Equal(t, "greeting", e.Name())
	require.Equal(t, 1, e.Version())

	value, posted := e.Value()
	require.True(t, posted)
	require.Equal(t, "initial", value)

	sticky := &recorder[string]{}
	normal := &recorder[string]{}
	e.ListenForeverSticky(sticky.record)
	e.ListenForever(normal.record)

	require.Equal(t, []string{"initial"}, sticky.values)
	require.Empty(t, normal.values)
}

func TestLiveEvent_LifecycleGating(t *testing.T) {
	e := New[int](mainthread.NewManual())
	owner := lifecycle.NewRegistry(lifecycle.Created)

	normal := &recorder[int]{}
	sticky := &recorder[int]{}
	e.Listen(owner, normal.record)
	e.ListenSticky(owner, sticky.record)
	require.True(t, e.HasListeners())
	require.False(t, e.HasActiveListeners())

	e.Post(1)
	e.Post(2)
	require.Empty(t, normal.values)
	require.Empty(t, sticky.values)

	// the sticky listener catches up with the latest missed value only
	require.NoError(t, owner.MoveTo(lifecycle.Started))
	require.True(t, e.HasActiveListeners())
	require.Empty(t, normal.values)
	require.Equal(t, []int{2}, sticky.values)

	e.Post(3)
	require.Equal(t, []int{3}, normal.values)
	require.Equal(t, []int{2, 3}, sticky.values)

	require.NoError(t, owner.MoveTo(lifecycle.Created))
	require.False(t, e.HasActiveListeners())
	e.Post(4)
	require.Equal(t, []int{3}, normal.values)
	require.Equal(t, []int{2, 3}, sticky.values)

	require.NoError(t, owner.MoveTo(lifecycle.Resumed))
	require.Equal(t, []int{3}, normal.values)
	require.Equal(t, []int{2, 3, 4}, sticky.values)

	require.NoError(t, owner.Destroy())
	require.False(t, e.HasListeners())

	e.Post(5)
	require.Equal(t, []int{3}, normal.values)
	require.Equal(t, []int{2, 3, 4}, sticky.values)
}

func TestLiveEvent_LifecycleScenario(t *testing.T) {
	e := New[int](mainthread.NewManual())
	owner := lifecycle.NewRegistry()
	require.NoError(t, owner.MoveTo(lifecycle.Created))

	listen := &recorder[int]{}
	listenSticky := &recorder[int]{}
	listenForever := &recorder[int]{}
	listenForeverSticky := &recorder[int]{}

	e.Listen(owner, listen.record)
	e.ListenSticky(owner, listenSticky.record)
	e.ListenForever(listenForever.record)
	e.ListenForeverSticky(listenForeverSticky.record)

	e.Post(99)
	require.NoError(t, owner.MoveTo(lifecycle.Started))
	e.Post(109)
	require.NoError(t, owner.MoveTo(lifecycle.Resumed))
	e.Post(119)
	require.NoError(t, owner.MoveTo(lifecycle.Started))
	e.Post(129)
	require.NoError(t, owner.MoveTo(lifecycle.Created))
	e.Post(139)

	require.Equal(t, []int{109, 119, 129}, listen.values)
	require.Equal(t, []int{99, 109, 119, 129}, listenSticky.values)
	require.Equal(t, []int{99, 109, 119, 129, 139}, listenForever.values)
	require.Equal(t, []int{99, 109, 119, 129, 139}, listenForeverSticky.values)
}

func TestLiveEvent_MinActiveState(t *testing.T) {
	e := New[int](mainthread.NewManual())
	owner := lifecycle.NewRegistry(lifecycle.Started)

	resumedOnly := &recorder[int]{}
	e.Register(resumedOnly.record, WithOwner(owner), WithMinActiveState(lifecycle.Resumed), WithSticky())

	e.Post(1)
	require.Empty(t, resumedOnly.values)

	require.NoError(t, owner.MoveTo(lifecycle.Resumed))
	require.Equal(t, []int{1}, resumedOnly.values)
}

func TestLiveEvent_DestroyedOwner(t *testing.T) {
	e := New[int](mainthread.NewManual())
	owner := lifecycle.NewRegistry(lifecycle.Started)
	require.NoError(t, owner.Destroy())

	subscription := e.ListenSticky(owner, func(int) { t.Fatal("listener of destroyed owner must not be invoked") })
	require.Zero(t, subscription.ID())
	require.False(t, e.HasListeners())

	e.Post(1)
	subscription.Unsubscribe()
}

func TestLiveEvent_ListenerDestroysOwner(t *testing.T) {
	e := New[int](mainthread.NewManual())
	owner := lifecycle.NewRegistry(lifecycle.Created)

	received := &recorder[int]{}
	e.ListenSticky(owner, func(value int) {
		received.record(value)
		require.NoError(t, owner.Destroy())
	})

	e.Post(1)
	require.Empty(t, received.values)

	require.NoError(t, owner.MoveTo(lifecycle.Started))
	require.Equal(t, []int{1}, received.values)
	require.Equal(t, lifecycle.Destroyed, owner.CurrentState())
	require.False(t, e.HasListeners())

	e.Post(2)
	require.Equal(t, []int{1}, received.values)

	// an owner moved by a listener during a regular delivery
	other := lifecycle.NewRegistry(lifecycle.Started)
	observed := &recorder[int]{}
	e.Listen(other, func(value int) {
		observed.record(value)
		require.NoError(t, other.MoveTo(lifecycle.Created))
	})
	forever := &recorder[int]{}
	e.ListenForever(forever.record)

	e.Post(3)
	e.Post(4)
	require.Equal(t, []int{3}, observed.values)
	require.Equal(t, []int{3, 4}, forever.values)
	require.Equal(t, lifecycle.Created, other.CurrentState())
}

func TestLiveEvent_RemoveOwner(t *testing.T) {
	e := New[int](mainthread.NewManual())
	first := lifecycle.NewRegistry(lifecycle.Started)
	second := lifecycle.NewRegistry(lifecycle.Started)

	removed := &recorder[int]{}
	kept := &recorder[int]{}
	e.Listen(first, removed.record)
	e.ListenSticky(first, removed.record)
	e.Listen(second, kept.record)
	require.Equal(t, 3, e.ListenerCount())

	e.RemoveOwner(first)
	e.RemoveOwner(nil)
	require.Equal(t, 1, e.ListenerCount())

	e.Post(1)
	require.Empty(t, removed.values)
	require.Equal(t, []int{1}, kept.values)

	// the owner no longer notifies the removed listeners
	require.NoError(t, first.MoveTo(lifecycle.Resumed))
	require.Empty(t, removed.values)
}

func TestLiveEvent_Unsubscribe(t *testing.T) {
	e := New[int](mainthread.NewManual())
	other := New[int](mainthread.NewManual())

	normal := &recorder[int]{}
	subscription := e.ListenForever(normal.record)
	otherSubscription := other.ListenForever(func(int) {})
	require.Equal(t, subscription.ID(), otherSubscription.ID())

	// subscriptions of other events are ignored
	e.Remove(otherSubscription)
	e.Remove(nil)
	require.Equal(t, 1, e.ListenerCount())

	e.Post(1)
	subscription.Unsubscribe()
	subscription.Unsubscribe()
	e.Remove(subscription)
	require.Zero(t, e.ListenerCount())

	e.Post(2)
	require.Equal(t, []int{1}, normal.values)

	var nilSubscription *Subscription
	nilSubscription.Unsubscribe()
	require.Zero(t, nilSubscription.ID())
}

func TestLiveEvent_DoubleRegistration(t *testing.T) {
	e := New[int](mainthread.NewManual())

	normal := &recorder[int]{}
	first := e.ListenForever(normal.record)
	e.ListenForever(normal.record)
	require.Equal(t, 2, e.ListenerCount())

	e.Post(1)
	require.Equal(t, []int{1, 1}, normal.values)

	first.Unsubscribe()
	e.Post(2)
	require.Equal(t, []int{1, 1, 2}, normal.values)
}

func TestLiveEvent_Once(t *testing.T) {
	e := New[int](mainthread.NewManual())

	once := &recorder[int]{}
	e.Register(once.record, WithOnce(), WithMode(Sticky))
	require.Equal(t, 1, e.ListenerCount())

	e.Post(1)
	e.Post(2)
	require.Equal(t, []int{1}, once.values)
	require.Zero(t, e.ListenerCount())
}

func TestLiveEvent_NotOnMainThread(t *testing.T) {
	e := New[int](mainthread.NewManual())
	subscription := e.ListenForever(func(int) {})

	requireNotOnMainThread(t, offMainThread(t, func() { e.Post(1) }))
	requireNotOnMainThread(t, offMainThread(t, func() { e.ListenForever(func(int) {}) }))
	requireNotOnMainThread(t, offMainThread(t, func() { e.Remove(subscription) }))
	requireNotOnMainThread(t, offMainThread(t, func() { subscription.Unsubscribe() }))
	requireNotOnMainThread(t, offMainThread(t, func() { e.RemoveOwner(lifecycle.NewRegistry()) }))

	require.Equal(t, 0, e.Version())
	require.Equal(t, 1, e.ListenerCount())

	// introspection works from every goroutine
	require.Nil(t, offMainThread(t, func() {
		e.Value()
		e.Version()
		e.HasActiveListeners()
	}))
}

func TestLiveEvent_ListenerPanics(t *testing.T) {
	e := New[int](mainthread.NewManual(), WithName("panicking"), WithLogger(logger.NewNopLogger()))

	var failures []error
	e.Events.ListenerFailed.Hook(func(err error) {
		failures = append(failures, err)
	})

	e.ListenForever(func(int) { panic("boom") })
	healthy := &recorder[int]{}
	e.ListenForever(healthy.record)

	e.Post(1)
	require.Equal(t, []int{1}, healthy.values)
	require.Len(t, failures, 1)
	require.True(t, ierrors.Is(failures[0], ErrListenerFailed))
	require.True(t, ierrors.Is(failures[0], ierrors.ErrPanicked))
	require.Contains(t, failures[0].Error(), "panicking")
	require.Contains(t, failures[0].Error(), "boom")

	e.Post(2)
	require.Equal(t, []int{1, 2}, healthy.values)
	require.Len(t, failures, 2)
	require.Equal(t, 2, e.Version())
	require.Equal(t, 2, e.ListenerCount())
}

func TestLiveEvent_PostAsync(t *testing.T) {
	dispatcher := mainthread.NewManual()
	e := New[int](dispatcher)

	normal := &recorder[int]{}
	e.ListenForever(normal.record)

	require.Nil(t, offMainThread(t, func() {
		e.PostAsync(1)
		e.PostAsync(2)
		e.PostAsync(3)
	}))
	require.Equal(t, 1, dispatcher.PendingCount())
	require.Empty(t, normal.values)

	require.Equal(t, 1, dispatcher.RunPending())
	require.Equal(t, []int{3}, normal.values)
	require.Equal(t, 1, e.Version())

	// the main thread can hand off values as well
	e.PostAsync(4)
	require.Equal(t, []int{3}, normal.values)
	dispatcher.RunPending()
	require.Equal(t, []int{3, 4}, normal.values)
}

func TestLiveEvent_ReentrantPost(t *testing.T) {
	e := New[int](mainthread.NewManual())

	reposting := &recorder[int]{}
	e.ListenForever(func(value int) {
		reposting.record(value)

		if value == 1 {
			e.Post(2)
		}
	})
	observer := &recorder[int]{}
	e.ListenForever(observer.record)

	e.Post(1)
	require.Equal(t, []int{1, 2}, reposting.values)
	require.Equal(t, []int{2}, observer.values)
	require.Equal(t, 2, e.Version())
}

func TestLiveEvent_ModificationsDuringDelivery(t *testing.T) {
	e := New[int](mainthread.NewManual())

	late := &recorder[int]{}
	removed := &recorder[int]{}
	var removedSubscription *Subscription

	e.ListenForever(func(value int) {
		if value == 1 {
			e.ListenForeverSticky(late.record)
			removedSubscription.Unsubscribe()
		}
	})
	removedSubscription = e.ListenForever(removed.record)

	e.Post(1)
	require.Equal(t, []int{1}, late.values)
	require.Empty(t, removed.values)

	e.Post(2)
	require.Equal(t, []int{1, 2}, late.values)
	require.Equal(t, 2, e.ListenerCount())
}

func TestLiveEvent_ActiveStateChanged(t *testing.T) {
	e := New[int](mainthread.NewManual())
	owner := lifecycle.NewRegistry(lifecycle.Created)

	activeStates := &recorder[bool]{}
	e.Events.ActiveStateChanged.Hook(activeStates.record)

	bound := e.Listen(owner, func(int) {})
	require.Empty(t, activeStates.values)

	require.NoError(t, owner.MoveTo(lifecycle.Started))
	require.Equal(t, []bool{true}, activeStates.values)

	forever := e.ListenForever(func(int) {})
	require.Equal(t, []bool{true}, activeStates.values)

	bound.Unsubscribe()
	require.Equal(t, []bool{true}, activeStates.values)

	forever.Unsubscribe()
	require.Equal(t, []bool{true, false}, activeStates.values)
	require.False(t, e.HasActiveListeners())
}

func TestLiveEvent_EventLoop(t *testing.T) {
	loop := mainthread.NewEventLoop()
	loop.Start()
	defer loop.StopAndWait()

	e := New[int](loop)
	owner := lifecycle.NewRegistry()

	var delivered []int
	var deliveredMutex sync.Mutex
	require.NoError(t, loop.SubmitAndWait(func() {
		e.ListenSticky(owner, func(value int) {
			deliveredMutex.Lock()
			defer deliveredMutex.Unlock()

			delivered = append(delivered, value)
		})
	}))

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(value int) {
			defer wg.Done()

			e.PostAsync(value)
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return e.Version() > 0 && loop.PendingQueueSize() == 0 }, time.Second, time.Millisecond)

	// the owner is moved from the test goroutine, the notifications are handed over to the loop
	require.NoError(t, owner.MoveTo(lifecycle.Started))
	require.Eventually(t, func() bool {
		deliveredMutex.Lock()
		defer deliveredMutex.Unlock()

		return len(delivered) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, loop.SubmitAndWait(func() {}))

	latest, posted := e.Value()
	require.True(t, posted)

	deliveredMutex.Lock()
	defer deliveredMutex.Unlock()
	require.Equal(t, []int{latest}, delivered)
}
