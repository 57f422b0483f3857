package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/chirpstack/chirpstack/api/go/v4/integration"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// messageField is the decoded-object field carrying the uplink text.
const messageField = "message"

// unmarshal accepts ChirpStack's JSON encoding and ignores fields added by
// newer ChirpStack versions.
var unmarshal = protojson.UnmarshalOptions{DiscardUnknown: true}

func decode(payload []byte, msg proto.Message) error {
	if err := unmarshal.Unmarshal(payload, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func deviceOf(info *integration.DeviceInfo) (Device, error) {
	d := Device{
		DevEUI: info.GetDevEui(),
		Name:   info.GetDeviceName(),
	}
	if d.DevEUI == "" {
		return d, ErrNoDevice
	}
	if d.Name == "" {
		d.Name = UnknownDevice
	}
	return d, nil
}

func timeOf(ts *timestamppb.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.AsTime()
	return &t
}

// DecodeUplink decodes an "up" event.
//
// The message text is the "message" field of the codec-decoded object,
// or NoMessage. Radio metrics come from the first rxInfo entry.
func DecodeUplink(payload []byte) (*Uplink, error) {
	var ev integration.UplinkEvent
	if err := decode(payload, &ev); err != nil {
		return nil, err
	}

	dev, err := deviceOf(ev.GetDeviceInfo())
	if err != nil {
		return nil, err
	}

	up := &Uplink{
		Device:  dev,
		Time:    timeOf(ev.GetTime()),
		FPort:   ev.GetFPort(),
		Message: messageOf(ev.GetObject()),
	}

	if rx := ev.GetRxInfo(); len(rx) > 0 && rx[0] != nil {
		rssi := int(rx[0].GetRssi())
		snr := float64(rx[0].GetSnr())
		up.RSSI = &rssi
		up.SNR = &snr
	}

	return up, nil
}

func messageOf(obj *structpb.Struct) string {
	v, ok := obj.GetFields()[messageField]
	if !ok || v == nil {
		return NoMessage
	}
	if s, isString := v.GetKind().(*structpb.Value_StringValue); isString {
		return s.StringValue
	}
	return fmt.Sprint(v.AsInterface())
}

// DecodeJoin decodes a "join" event.
func DecodeJoin(payload []byte) (*Join, error) {
	var ev integration.JoinEvent
	if err := decode(payload, &ev); err != nil {
		return nil, err
	}
	dev, err := deviceOf(ev.GetDeviceInfo())
	if err != nil {
		return nil, err
	}
	return &Join{Device: dev, DevAddr: ev.GetDevAddr()}, nil
}

// DecodeStatus decodes a "status" event.
func DecodeStatus(payload []byte) (*Status, error) {
	var ev integration.StatusEvent
	if err := decode(payload, &ev); err != nil {
		return nil, err
	}
	dev, err := deviceOf(ev.GetDeviceInfo())
	if err != nil {
		return nil, err
	}

	st := &Status{
		Device:        dev,
		Time:          timeOf(ev.GetTime()),
		Margin:        int(ev.GetMargin()),
		ExternalPower: ev.GetExternalPowerSource(),
	}
	if !ev.GetBatteryLevelUnavailable() && !st.ExternalPower {
		level := float64(ev.GetBatteryLevel())
		st.BatteryLevel = &level
	}
	return st, nil
}

// DecodeAck decodes an "ack" event.
func DecodeAck(payload []byte) (*Ack, error) {
	var ev integration.AckEvent
	if err := decode(payload, &ev); err != nil {
		return nil, err
	}
	dev, err := deviceOf(ev.GetDeviceInfo())
	if err != nil {
		return nil, err
	}
	return &Ack{Device: dev, QueueItemID: ev.GetQueueItemId(), Acknowledged: ev.GetAcknowledged()}, nil
}

// DecodeTxAck decodes a "txack" event.
func DecodeTxAck(payload []byte) (*TxAck, error) {
	var ev integration.TxAckEvent
	if err := decode(payload, &ev); err != nil {
		return nil, err
	}
	dev, err := deviceOf(ev.GetDeviceInfo())
	if err != nil {
		return nil, err
	}
	return &TxAck{Device: dev, QueueItemID: ev.GetQueueItemId(), GatewayID: ev.GetGatewayId()}, nil
}

// DecodeLog decodes a "log" event.
func DecodeLog(payload []byte) (*Log, error) {
	var ev integration.LogEvent
	if err := decode(payload, &ev); err != nil {
		return nil, err
	}
	dev, err := deviceOf(ev.GetDeviceInfo())
	if err != nil {
		return nil, err
	}

	l := &Log{
		Device:      dev,
		Level:       strings.ToLower(ev.GetLevel().String()),
		Code:        ev.GetCode().String(),
		Description: ev.GetDescription(),
	}
	if l.Description == "" {
		l.Description = NoMessage
	}
	return l, nil
}
