// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"net"
	"testing"
	"time"

	"wakeup/internal/transport"
)

func listen(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Skipf("loopback UDP unavailable: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func receive(t *testing.T, conn *net.UDPConn) Packet {
	t.Helper()
	buf := make([]byte, 64)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	if n != PacketSize {
		t.Fatalf("packet size = %d, want %d", n, PacketSize)
	}
	p, err := DecodePacket(buf[:n])
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	return p
}

func TestEventPublisher(t *testing.T) {
	conn := listen(t)

	pub, err := NewEventPublisher(conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewEventPublisher: %v", err)
	}
	defer pub.Close()

	ts := time.Unix(1700000000, 42)
	tests := []struct {
		name  string
		event transport.Event
		want  Packet
	}{
		{
			name:  "Transition",
			event: transport.Event{Kind: transport.KindTransition, From: "active", To: "triple_wait", Action: "launch_apps", Timestamp: ts},
			want:  Packet{Sequence: 1, Timestamp: ts.UnixNano(), Kind: 4, From: 2, To: 3, Detail: 1},
		},
		{
			name:  "Pattern",
			event: transport.Event{Kind: transport.KindPattern, From: "triple_wait", Pattern: "triple", Timestamp: ts},
			want:  Packet{Sequence: 2, Timestamp: ts.UnixNano(), Kind: 3, From: 3, Detail: 4},
		},
		{
			name:  "Wake",
			event: transport.Event{Kind: transport.KindWake, Timestamp: ts},
			want:  Packet{Sequence: 3, Timestamp: ts.UnixNano(), Kind: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := pub.Send(tt.event); err != nil {
				t.Fatalf("Send: %v", err)
			}
			if got := receive(t, conn); got != tt.want {
				t.Errorf("packet = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodePacketShort(t *testing.T) {
	if _, err := DecodePacket(make([]byte, PacketSize-1)); !errors.Is(err, ErrShortPacket) {
		t.Errorf("DecodePacket short = %v, want ErrShortPacket", err)
	}
}

func TestEventPublisherClosed(t *testing.T) {
	conn := listen(t)
	pub, err := NewEventPublisher(conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewEventPublisher: %v", err)
	}
	if err := pub.Send(transport.Event{Kind: transport.KindWake}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	receive(t, conn)

	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := pub.Send(transport.Event{Kind: transport.KindClap}); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Send after Close = %v, want ErrPublisherClosed", err)
	}
	if got := pub.Sequence(); got != 1 {
		t.Errorf("Sequence() = %d, want 1: a rejected send must not consume a number", got)
	}
}

func TestNewEventPublisherBadAddress(t *testing.T) {
	if _, err := NewEventPublisher("not an address"); err == nil {
		t.Error("expected resolve error")
	}
}
