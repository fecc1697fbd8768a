// Package infra contains technical adapters such as the MQTT publisher, the
// metrics sinks and the remote record-store client. These packages depend
// only on the interfaces defined in the core packages.
package infra
