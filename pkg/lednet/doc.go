// Package lednet implements the LEDNET control protocol for Magic Home
// style WiFi LED controllers.
//
// The protocol was reverse-engineered from, and tested only on, the
// HF-LPB100-ZJ200 RGBWW model. Devices are discovered over UDP port 48899
// (see the discovery package) and controlled over TCP port 5577 with the
// checksummed frames defined in the wire package.
//
// # Connection Model
//
// Every operation opens a fresh TCP connection, performs one exchange and
// closes it. There is no pooling or reuse; the OS read deadline is the only
// cancellation mechanism. A Device is not safe for concurrent use.
//
// # Shadow State
//
// A Device caches the last state it read from the hardware. Setters always
// finish with a refresh, so after a successful setter the cache matches the
// device. Getters never perform I/O; call Refresh first when another client
// may have changed the device in the meantime.
package lednet
