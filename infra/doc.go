// Package infra contains technical adapters such as the MQTT notifier,
// metrics exporters, and the roster file loader. These packages should
// depend only on the interfaces defined in the core packages.
package infra
