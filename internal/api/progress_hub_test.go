package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statlab/internal"
)

func subscribe(t *testing.T, hub *ProgressHub, key string) chan ProgressEvent {
	t.Helper()
	ch := make(chan ProgressEvent, 200)
	hub.register <- progressClient{runKey: key, channel: ch}
	require.Eventually(t, func() bool { return hub.ClientCount(key) == 1 }, time.Second, 5*time.Millisecond)
	return ch
}

func TestProgressReporter_Throttles(t *testing.T) {
	hub := NewProgressHub(internal.NewLogger(internal.LogLevelError))
	defer hub.Close()
	ch := subscribe(t, hub, "run-1")

	report := NewProgressReporter(hub, "run-1")
	for i := 1; i <= 1000; i++ {
		report(i, 1000)
	}

	var events []ProgressEvent
	require.Eventually(t, func() bool {
		for {
			select {
			case e := <-ch:
				events = append(events, e)
			default:
				return len(events) > 0 && events[len(events)-1].EventType == EventDone
			}
		}
	}, time.Second, 5*time.Millisecond)

	assert.LessOrEqual(t, len(events), progressSteps)
	last := events[len(events)-1]
	assert.Equal(t, 1000, last.Completed)
	assert.Equal(t, 1.0, last.Progress)
}

func TestProgressHub_IsolatesRuns(t *testing.T) {
	hub := NewProgressHub(internal.NewLogger(internal.LogLevelError))
	defer hub.Close()
	mine := subscribe(t, hub, "mine")

	hub.Broadcast(ProgressEvent{RunKey: "other", EventType: EventDone})
	hub.Broadcast(ProgressEvent{RunKey: "mine", EventType: EventDone, Completed: 5})

	select {
	case e := <-mine:
		assert.Equal(t, 5, e.Completed)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	hub.unregister <- progressClient{runKey: "mine", channel: mine}
	assert.Eventually(t, func() bool { return hub.ClientCount("mine") == 0 }, time.Second, 5*time.Millisecond)
}

func sseRouter(hub *ProgressHub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/progress", hub.HandleSSE)
	return r
}

func TestHandleSSE_StreamsUntilTerminalEvent(t *testing.T) {
	for _, terminal := range []string{EventDone, EventError} {
		t.Run(terminal, func(t *testing.T) {
			hub := NewProgressHub(internal.NewLogger(internal.LogLevelError))
			defer hub.Close()
			router := sseRouter(hub)

			w := createTestResponseRecorder()
			finished := make(chan struct{})
			go func() {
				defer close(finished)
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress?run=k", nil))
			}()
			require.Eventually(t, func() bool { return hub.ClientCount("k") == 1 }, time.Second, 5*time.Millisecond)

			hub.Broadcast(ProgressEvent{RunKey: "k", EventType: EventProgress, Completed: 10, Total: 100})
			hub.Broadcast(ProgressEvent{RunKey: "k", EventType: terminal, Completed: 100, Total: 100})

			select {
			case <-finished:
			case <-time.After(2 * time.Second):
				t.Fatal("stream did not end after the " + terminal + " event")
			}
			body := w.Body.String()
			assert.Contains(t, body, "event:progress")
			assert.Contains(t, body, "event:"+terminal)
			assert.Eventually(t, func() bool { return hub.ClientCount("k") == 0 }, time.Second, 5*time.Millisecond)
		})
	}
}

func TestHandleSSE_ClosedHubRefusesWithoutBlocking(t *testing.T) {
	hub := NewProgressHub(internal.NewLogger(internal.LogLevelError))
	hub.Close()
	router := sseRouter(hub)

	finished := make(chan int)
	go func() {
		defer close(finished)
		for i := 0; i < 25; i++ {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress?run=k", nil).WithContext(ctx))
			finished <- w.Code
		}
	}()

	served := 0
	timeout := time.After(2 * time.Second)
	for {
		select {
		case code, ok := <-finished:
			if !ok {
				assert.Equal(t, 25, served)
				return
			}
			assert.Equal(t, http.StatusServiceUnavailable, code)
			served++
		case <-timeout:
			t.Fatalf("HandleSSE blocked after Close; served %d requests", served)
		}
	}
}

func TestHandleSSE_CloseEndsOpenStream(t *testing.T) {
	hub := NewProgressHub(internal.NewLogger(internal.LogLevelError))
	router := sseRouter(hub)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		router.ServeHTTP(createTestResponseRecorder(), httptest.NewRequest(http.MethodGet, "/progress?run=k", nil))
	}()
	require.Eventually(t, func() bool { return hub.ClientCount("k") == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after Close")
	}
}

func TestHandleSSE_RequiresRunKey(t *testing.T) {
	hub := NewProgressHub(internal.NewLogger(internal.LogLevelError))
	defer hub.Close()

	w := httptest.NewRecorder()
	sseRouter(hub).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// testResponseRecorder mirrors gin's test-only recorder (defined in gin's
// context_test.go and not exported): gin's Context.Stream requires the
// underlying writer to implement http.CloseNotifier.
type testResponseRecorder struct {
	*httptest.ResponseRecorder
	closeChannel chan bool
}

func (r *testResponseRecorder) CloseNotify() <-chan bool {
	return r.closeChannel
}

func createTestResponseRecorder() *testResponseRecorder {
	return &testResponseRecorder{
		httptest.NewRecorder(),
		make(chan bool, 1),
	}
}
