package common

type EventMeta struct {
	EventType  string // e.g. "maxapi.packet.v1"
	Exchange   string // e.g. "maxapi"
	RoutingKey string // binding pattern, e.g. "maxapi.*.*"
}

// PacketEvent describes packets forwarded from a MAX session. Routing keys
// are maxapi.<opcode>.<payload kind>.
var PacketEvent = EventMeta{
	EventType:  "maxapi.packet.v1",
	Exchange:   "maxapi",
	RoutingKey: "maxapi.*.*",
}
