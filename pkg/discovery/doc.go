// Package discovery finds LEDNET controllers on the local network.
//
// Devices listen on UDP port 48899 and answer a fixed ASCII probe
// ("HF-A11ASSISTHREAD") with a comma-separated reply:
//
//	192.168.1.212,F0FE6B5A6D68,HF-LPB100-ZJ200
//	\___________/ \__________/ \_____________/
//	      IP          MAC          Model ID
//
// Only the model identifier is interpreted; replies from models outside the
// supported allowlist are silently skipped. A matching reply yields a device
// at the control port whose state is refreshed before it is returned.
//
// Scan broadcasts the probe on every up, broadcast-capable IPv4 interface
// and collects replies until the read timeout elapses; the timeout is the
// expected termination condition, not an error. Resolve probes a single
// address and reports nothing found when the timeout passes without a valid
// reply.
package discovery
