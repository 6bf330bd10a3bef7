package domain

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_SIGNALS      = "signals"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_CONTROLLER   = "controller"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type GetSignalsRequest struct {
	ActorRequestMixIn
}

type GetSignalsResponse struct {
	ActorResponseMixIn
	Signals Signals
}

// ChargerStatusUpdate carries an externally observed charger status into the
// controller, already mapped to the four-value input.
type ChargerStatusUpdate struct {
	Status ChargerStatus
}

type GetOutputsRequest struct {
	ActorRequestMixIn
}

type GetOutputsResponse struct {
	ActorResponseMixIn
	Outputs Outputs
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  any
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
