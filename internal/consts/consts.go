package consts

// EventsChannel is the redis pub/sub channel carrying domain event
// envelopes from the API to every stream session.
const EventsChannel = "taskboard:events"
