package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTrigger struct {
	mock.Mock
}

func (m *MockTrigger) Trigger(brand string) error {
	args := m.Called(brand)
	return args.Error(0)
}

// brokenResponseWriter accepts headers but fails every body write, like a
// client that hung up before the response went out.
type brokenResponseWriter struct {
	*httptest.ResponseRecorder
}

func (w brokenResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestHealthcheck(t *testing.T) {
	router := newRouter(new(MockTrigger))

	for _, path := range []string{"/", "/health"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "all good in the hood", rec.Body.String())
	}
}

func TestTriggerEndpoint(t *testing.T) {
	t.Run("queues a watched brand", func(t *testing.T) {
		trigger := new(MockTrigger)
		trigger.On("Trigger", "acme").Return(nil)

		rec := httptest.NewRecorder()
		newRouter(trigger).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trigger/acme", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"brand": "acme", "status": "queued"}`, rec.Body.String())
		trigger.AssertExpectations(t)
	})

	t.Run("unknown brands are not found", func(t *testing.T) {
		trigger := new(MockTrigger)
		trigger.On("Trigger", "nobody").Return(ErrUnknownBrand)

		rec := httptest.NewRecorder()
		newRouter(trigger).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trigger/nobody", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("logs a response that could not be written", func(t *testing.T) {
		hook := logtest.NewGlobal()
		defer hook.Reset()
		trigger := new(MockTrigger)
		trigger.On("Trigger", "acme").Return(nil)

		rec := brokenResponseWriter{httptest.NewRecorder()}
		newRouter(trigger).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trigger/acme", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)

		var logged bool
		for _, entry := range hook.AllEntries() {
			if entry.Level == logrus.ErrorLevel && strings.Contains(entry.Message, "connection reset by peer") {
				logged = true
			}
		}
		assert.True(t, logged, "write failure was not logged")
	})

	t.Run("only accepts POST", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(new(MockTrigger)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trigger/acme", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestScheduler(t *testing.T) {
	t.Run("trigger runs the configured spelling of the brand", func(t *testing.T) {
		ran := make(chan string, 1)
		s := NewScheduler("@every 1h", []string{"Acme"}, func(ctx context.Context, brand string) error {
			ran <- brand
			return nil
		})

		assert.NoError(t, s.Trigger("acme"))
		select {
		case brand := <-ran:
			assert.Equal(t, "Acme", brand)
		case <-time.After(time.Second):
			t.Fatal("triggered run never happened")
		}
	})

	t.Run("trigger rejects unknown brands", func(t *testing.T) {
		s := NewScheduler("@every 1h", []string{"Acme"}, func(ctx context.Context, brand string) error { return nil })
		assert.ErrorIs(t, s.Trigger("globex"), ErrUnknownBrand)
	})

	t.Run("runs never overlap", func(t *testing.T) {
		var mu sync.Mutex
		active, maxActive := 0, 0
		s := NewScheduler("@every 1h", []string{"a", "b"}, func(ctx context.Context, brand string) error {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			return nil
		})

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.RunBrand(context.TODO(), "a")
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxActive)
	})

	t.Run("rejects a bad schedule", func(t *testing.T) {
		s := NewScheduler("every so often", nil, func(ctx context.Context, brand string) error { return nil })
		assert.Error(t, s.Start(context.TODO()))
	})
}
