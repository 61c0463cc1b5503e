package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fraol-12/WhisperBox/internal/config"
	"github.com/Fraol-12/WhisperBox/internal/model"
)

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []Notification
	err   error
	block chan struct{}
}

func (f *fakeNotifier) Enabled() bool { return true }

func (f *fakeNotifier) Notify(ctx context.Context, n Notification) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

type outcomes struct {
	mu  sync.Mutex
	got []string
}

func (o *outcomes) record(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, s)
}

func TestDispatch_Sends(t *testing.T) {
	fn := &fakeNotifier{}
	var out outcomes
	d := NewDispatcher(fn, zerolog.Nop(), time.Second)
	d.OnResult = out.record

	d.Dispatch(Notification{TicketID: "TICKET-00000001", Department: model.DepartmentIT})
	d.Wait()

	require.Len(t, fn.sent, 1)
	assert.Equal(t, "TICKET-00000001", fn.sent[0].TicketID)
	assert.Equal(t, []string{OutcomeSent}, out.got)
}

func TestDispatch_DoesNotBlockCaller(t *testing.T) {
	fn := &fakeNotifier{block: make(chan struct{})}
	d := NewDispatcher(fn, zerolog.Nop(), time.Second)

	done := make(chan struct{})
	go func() {
		d.Dispatch(Notification{TicketID: "TICKET-00000002"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a slow notifier")
	}
	close(fn.block)
	d.Wait()
}

func TestDispatch_FailureIsSwallowed(t *testing.T) {
	fn := &fakeNotifier{err: errors.New("smtp down")}
	var out outcomes
	d := NewDispatcher(fn, zerolog.Nop(), time.Second)
	d.OnResult = out.record

	d.Dispatch(Notification{TicketID: "TICKET-00000003"})
	d.Wait()

	assert.Equal(t, []string{OutcomeFailed}, out.got)
}

func TestDispatch_TimesOut(t *testing.T) {
	fn := &fakeNotifier{block: make(chan struct{})}
	var out outcomes
	d := NewDispatcher(fn, zerolog.Nop(), 20*time.Millisecond)
	d.OnResult = out.record

	d.Dispatch(Notification{TicketID: "TICKET-00000004"})
	d.Wait()

	assert.Equal(t, []string{OutcomeFailed}, out.got)
}

func TestDispatch_Disabled(t *testing.T) {
	var out outcomes
	d := NewDispatcher(nil, zerolog.Nop(), time.Second)
	d.OnResult = out.record

	d.Dispatch(Notification{TicketID: "TICKET-00000005"})
	d.Wait()

	assert.Equal(t, []string{OutcomeDisabled}, out.got)
}

func TestNewSMTP_DisabledWithoutCredentials(t *testing.T) {
	n := NewSMTP(config.EmailConfig{Host: "smtp.example.com", Port: 587})
	assert.False(t, n.Enabled())

	n = NewSMTP(config.EmailConfig{Host: "smtp.example.com", Port: 587, User: "a@example.com", Password: "x", To: "a@example.com"})
	assert.True(t, n.Enabled())
}

func TestMessageContent(t *testing.T) {
	n := Notification{TicketID: "TICKET-0A1B2C3D", Department: model.DepartmentLibrary}
	assert.Equal(t, "New Complaint - TICKET-0A1B2C3D", Subject(n))

	body := Body(n)
	assert.True(t, strings.Contains(body, "TICKET-0A1B2C3D"))
	assert.True(t, strings.Contains(body, "Library"))

	_, err := buildMessage(config.EmailConfig{User: "ops@university.edu", To: "ops@university.edu"}, n)
	require.NoError(t, err)

	_, err = buildMessage(config.EmailConfig{User: "not an address", To: "ops@university.edu"}, n)
	assert.Error(t, err)
}
