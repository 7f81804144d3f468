package device

import "fmt"

// Command opcodes for the sensor's tiny command/response service.
const (
	opSubscribe   = 1
	opUnsubscribe = 2
)

// streamPath selects the combined 9-axis stream at its native rate.
const streamPath = "/Meas/IMU9/104"

// commandRef tags commands so responses can be matched; a single fixed
// reference is enough for one client.
const commandRef = 99

// startCommand frames the subscribe command for the IMU9 stream.
func startCommand() []byte {
	return append([]byte{opSubscribe, commandRef}, []byte(streamPath)...)
}

// stopCommand frames the unsubscribe command.
func stopCommand() []byte {
	return []byte{opUnsubscribe, commandRef}
}

// allowedOps is the allowlist of opcodes that may be written to the device.
var allowedOps = map[byte]string{
	opSubscribe:   "subscribe to a measurement stream",
	opUnsubscribe: "unsubscribe from the measurement stream",
}

// validateCommand rejects frames whose opcode is not allowlisted.
func validateCommand(frame []byte) error {
	if len(frame) < 2 {
		return fmt.Errorf("command frame too short: %d bytes", len(frame))
	}
	if _, ok := allowedOps[frame[0]]; !ok {
		return fmt.Errorf("opcode %d is not allowlisted", frame[0])
	}
	return nil
}
