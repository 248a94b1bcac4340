// Package bridge exposes discovered lights over MQTT.
//
// The bridge subscribes to <prefix>/set/<device-ip> and applies each JSON
// payload to the addressed device through the command dispatcher. After
// every applied payload, and after every discovery run, it publishes the
// device's state to <prefix>/status/<device-ip>.
package bridge
