package outbox

// Event is the envelope written to the outbox table.
// It is published to the Kafka topic named EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
