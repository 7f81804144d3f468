package device

import (
	"io"
	"time"
)

// MockPort implements Porter for tests and dev mode.
type MockPort struct {
	ReadData    []byte
	WrittenData []byte
	ReadError   error
	WriteError  error
	CloseError  error
	Closed      bool
	ReadDelay   time.Duration
}

func (m *MockPort) Read(p []byte) (int, error) {
	if m.ReadError != nil {
		return 0, m.ReadError
	}
	if m.ReadDelay > 0 {
		time.Sleep(m.ReadDelay)
	}
	if len(m.ReadData) == 0 {
		return 0, io.EOF
	}
	n := copy(p, m.ReadData)
	m.ReadData = m.ReadData[n:]
	return n, nil
}

func (m *MockPort) Write(p []byte) (int, error) {
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.WrittenData = append(m.WrittenData, p...)
	return len(p), nil
}

func (m *MockPort) Close() error {
	m.Closed = true
	return m.CloseError
}

// NewMockSensorMux creates a SensorMux fed from fixture bytes, used by dev
// mode and tests.
func NewMockSensorMux(data []byte) *SensorMux[*MockPort] {
	return NewSensorMux[*MockPort](&MockPort{ReadData: data})
}
