package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "booking",
	Pass: "booking",
	Name: "booking",
}

var defaultAuth = Auth{
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 7 * 24 * time.Hour,
	SessionTTL: 24 * time.Hour,
}

var defaultKafka = Kafka{
	Brokers:            []string{"localhost:9092"},
	NotificationsTopic: "booking.notifications",
	GroupID:            "booking-notify",
}

var defaultRelay = Relay{
	Interval:  2 * time.Second,
	BatchSize: 100,
}

var defaultRateLimit = RateLimit{
	Enabled: true,
	RPS:     5,
	Burst:   10,
	TTL:     10 * time.Minute,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultAuth returns the default token lifetimes.
func DefaultAuth() Auth {
	return defaultAuth
}

// DefaultKafka returns the default Kafka settings.
func DefaultKafka() Kafka {
	k := defaultKafka
	k.Brokers = append([]string(nil), defaultKafka.Brokers...)
	return k
}

// DefaultRelay returns the default outbox relay settings.
func DefaultRelay() Relay {
	return defaultRelay
}

// DefaultRateLimit returns the default auth rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
