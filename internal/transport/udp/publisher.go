// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	applog "wakeup/internal/log"
	"wakeup/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Kind              | uint8          | 1            | Event kind code         |
| From              | uint8          | 1            | Mode code before        |
| To                | uint8          | 1            | Mode code after         |
| Detail            | uint8          | 1            | Action or pattern code  |
+-----------------------------------------------------------------------------+

Codes are 0 when the field does not apply to the event kind.
*/

// PacketSize is the fixed length of an event datagram.
const PacketSize = 4 + 8 + 4

// ErrShortPacket is returned by DecodePacket for truncated datagrams.
var ErrShortPacket = errors.New("udp: short packet")

var kindCodes = map[transport.EventKind]uint8{
	transport.KindWake:       1,
	transport.KindClap:       2,
	transport.KindPattern:    3,
	transport.KindTransition: 4,
	transport.KindDispatch:   5,
}

var modeCodes = map[string]uint8{
	"idle":        1,
	"active":      2,
	"triple_wait": 3,
}

var detailCodes = map[string]uint8{
	"launch_apps": 1,
	"play_media":  2,
	"double":      3,
	"triple":      4,
}

// Packet is a decoded event datagram.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Kind      uint8
	From      uint8
	To        uint8
	Detail    uint8
}

// ErrPublisherClosed is returned by Send after Close.
var ErrPublisherClosed = errors.New("udp: event publisher closed")

// EventPublisher packs listener events into fixed binary datagrams and
// writes them to one UDP target. Lighting rigs and microcontrollers on the
// LAN can react without a JSON parser. It is safe for concurrent use.
type EventPublisher struct {
	target string

	mu           sync.Mutex    // Protects everything below.
	conn         *net.UDPConn  // Nil once closed.
	sequenceNum  uint32        // Monotonically increasing sequence number.
	packetBuffer *bytes.Buffer // Reusable buffer for constructing packets.
}

// NewEventPublisher dials targetAddress ("host:port"). UDP has no
// handshake, so this only fails for unresolvable addresses.
func NewEventPublisher(targetAddress string) (*EventPublisher, error) {
	addr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("resolving UDP target %q: %w", targetAddress, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dialing UDP target %q: %w", targetAddress, err)
	}

	applog.Infof("EventPublisher: Sending %d-byte event packets to %s", PacketSize, conn.RemoteAddr())
	return &EventPublisher{
		target:       conn.RemoteAddr().String(),
		conn:         conn,
		packetBuffer: bytes.NewBuffer(make([]byte, 0, PacketSize)),
	}, nil
}

// Send encodes one event and writes it as a single datagram. A sequence
// number is consumed only by packets that were written.
func (p *EventPublisher) Send(event transport.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return ErrPublisherClosed
	}

	seq := p.sequenceNum + 1
	p.packetBuffer.Reset()
	if err := encode(p.packetBuffer, seq, event); err != nil {
		return fmt.Errorf("EventPublisher: packing event: %w", err)
	}
	if _, err := p.conn.Write(p.packetBuffer.Bytes()); err != nil {
		applog.Debugf("EventPublisher: Error sending packet %d: %v", seq, err)
		return fmt.Errorf("sending UDP event packet: %w", err)
	}
	p.sequenceNum = seq

	applog.Debugf("EventPublisher: Sent packet %d (%s)", seq, event.Kind)
	return nil
}

// Sequence returns the sequence number of the last packet written.
func (p *EventPublisher) Sequence() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sequenceNum
}

// Close closes the connection. Repeated calls return nil.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	applog.Infof("EventPublisher: Closing connection to %s", p.target)
	err := p.conn.Close()
	p.conn = nil
	if err != nil {
		return fmt.Errorf("closing UDP connection: %w", err)
	}
	return nil
}

func encode(buf *bytes.Buffer, seq uint32, event transport.Event) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	detail := detailCodes[event.Action]
	if event.Kind == transport.KindPattern {
		detail = detailCodes[event.Pattern]
	}

	err := binary.Write(buf, binary.BigEndian, seq)
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, ts.UnixNano())
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, [4]uint8{
			kindCodes[event.Kind],
			modeCodes[event.From],
			modeCodes[event.To],
			detail,
		})
	}
	return err
}

// DecodePacket parses a datagram produced by EventPublisher.
func DecodePacket(data []byte) (Packet, error) {
	if len(data) < PacketSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(data))
	}
	return Packet{
		Sequence:  binary.BigEndian.Uint32(data[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(data[4:12])),
		Kind:      data[12],
		From:      data[13],
		To:        data[14],
		Detail:    data[15],
	}, nil
}

var _ transport.Transport = (*EventPublisher)(nil)
