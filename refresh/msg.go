// msg.go implements the refresh protocol's wire payload: a small header
// naming the refresh id and payload kind, followed by one of
// {FieldFace, ParticleBag, FaceFluxes, empty}. Encoding uses json-iterator,
// matching the codec aistore reaches for throughout `ais`/`xact` rather than
// stdlib encoding/json.
package refresh

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/teris-io/shortid"

	"github.com/cello-mesh/refresh/mesh"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// PayloadKind names which variant a Msg carries.
type PayloadKind int

const (
	KindField PayloadKind = iota
	KindParticle
	KindFlux
	KindEmpty
)

// FieldPayload is one field-face exchange.
type FieldPayload struct {
	IF3    [3]int8
	IC3    [3]int8
	Op     mesh.RefreshOp
	Fields []FieldEntry
}

type FieldEntry struct {
	FieldID string
	Lo, Hi  [3]int
	Dims    [3]int
	Data    []float64
}

// ParticlePayload carries one or more particle-type batches.
type ParticlePayload struct {
	Types []ParticleTypeBatch
}

type ParticleTypeBatch struct {
	TypeID     string
	Particles  []mesh.Particle
}

// FluxPayload carries a coarsened boundary-flux correction.
type FluxPayload struct {
	Axis   int8
	Hi     bool
	Fields []FluxEntry
}

type FluxEntry struct {
	FieldID string
	Dims    [2]int
	Data    []float64
}

// Msg is the in-flight refresh payload: it carries the target refresh id
// and exactly one of the payload variants, or none for an empty heartbeat,
// which exists purely so the receiver's counter closes even when there is
// no data to send.
type Msg struct {
	RefreshID int
	Kind      PayloadKind
	Token     string // correlation id for diagnostics only, never protocol logic
	Field     *FieldPayload
	Particle  *ParticlePayload
	Flux      *FluxPayload
}

// NewEmpty builds a heartbeat message for refreshID.
func NewEmpty(refreshID int) Msg {
	return Msg{RefreshID: refreshID, Kind: KindEmpty, Token: newToken()}
}

func NewField(refreshID int, p *FieldPayload) Msg {
	return Msg{RefreshID: refreshID, Kind: KindField, Token: newToken(), Field: p}
}

func NewParticle(refreshID int, p *ParticlePayload) Msg {
	return Msg{RefreshID: refreshID, Kind: KindParticle, Token: newToken(), Particle: p}
}

func NewFlux(refreshID int, p *FluxPayload) Msg {
	return Msg{RefreshID: refreshID, Kind: KindFlux, Token: newToken(), Flux: p}
}

func newToken() string {
	id, err := shortid.Generate()
	if err != nil {
		return fmt.Sprintf("tok-%d", len(id))
	}
	return id
}

// Encode/Decode are the wire boundary transport crosses; every message,
// including heartbeats, round-trips through them so the substrate (H) never
// needs to special-case empty payloads.
func Encode(m Msg) ([]byte, error) { return jsonAPI.Marshal(m) }

func Decode(b []byte) (Msg, error) {
	var m Msg
	err := jsonAPI.Unmarshal(b, &m)
	return m, err
}
