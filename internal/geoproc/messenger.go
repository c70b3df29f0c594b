package geoproc

import (
	"fmt"
	"log"
	"sync"

	"github.com/cumberland-gis/pointbuffer/internal/timeutil"
)

// messageTimeLayout matches the host console format, e.g. 02-13-2017 10:00:00
const messageTimeLayout = "01-02-2006 15:04:05"

// Messenger mirrors the host console: timestamped status messages plus a
// separate error channel.
type Messenger interface {
	Message(format string, args ...any)
	Error(format string, args ...any)
}

// ConsoleMessenger writes timestamped messages through the standard logger.
type ConsoleMessenger struct {
	Clock timeutil.Clock
}

func (m *ConsoleMessenger) clock() timeutil.Clock {
	if m.Clock == nil {
		return timeutil.RealClock{}
	}
	return m.Clock
}

// Message logs a timestamped status message.
func (m *ConsoleMessenger) Message(format string, args ...any) {
	log.Printf("%s : %s", m.clock().Now().Format(messageTimeLayout), fmt.Sprintf(format, args...))
}

// Error logs a timestamped error message.
func (m *ConsoleMessenger) Error(format string, args ...any) {
	log.Printf("ERROR %s : %s", m.clock().Now().Format(messageTimeLayout), fmt.Sprintf(format, args...))
}

// CaptureMessenger records messages for tests.
type CaptureMessenger struct {
	mu       sync.Mutex
	messages []string
	errors   []string
}

// Message records a status message.
func (m *CaptureMessenger) Message(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(format, args...))
}

// Error records an error message.
func (m *CaptureMessenger) Error(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, fmt.Sprintf(format, args...))
}

// Messages returns the recorded status messages.
func (m *CaptureMessenger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

// Errors returns the recorded error messages.
func (m *CaptureMessenger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.errors))
	copy(out, m.errors)
	return out
}
