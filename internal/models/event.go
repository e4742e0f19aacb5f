package models

// RequiredFields are the top-level keys every event must carry.
// Value types are deliberately not enforced beyond JSON well-formedness;
// the sink owns any deeper schema checks.
var RequiredFields = []string{
	"schema_version",
	"source",
	"timestamp",
	"level",
	"logger",
	"message",
	"extra",
}

// Event is one logging record accepted by the relay endpoint.
type Event struct {
	// Fields holds the full decoded request object. It is forwarded to the
	// sink verbatim so producers can evolve their payloads without relay
	// changes.
	Fields map[string]any
}

// Extra returns the open-ended extra mapping, or nil when the producer sent
// something other than an object.
func (e *Event) Extra() map[string]any {
	extra, _ := e.Fields["extra"].(map[string]any)
	return extra
}

// RequestID returns extra.request_id when it is a non-empty string.
func (e *Event) RequestID() string {
	id, _ := e.Extra()["request_id"].(string)
	return id
}

// InsertRecord is the unit submitted to the warehouse: the event row plus the
// deduplication key the sink uses to drop repeated deliveries.
type InsertRecord struct {
	Row      map[string]any
	InsertID string
}

// RelayResponse is the short JSON body returned to producers. The original
// payload is never echoed back.
type RelayResponse struct {
	Text string `json:"text"`
	Code int    `json:"code"`
}
